// Command autoplay plays a plant merge session against a running server
// until it grows a winning plant or runs out of moves.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/logging"
)

// ErrNoVictory is returned when the move budget runs out before winning
var ErrNoVictory = errors.New("no victory within the move budget")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Greedy plant merge bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Configuration id for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "Remember the session ID here between runs"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "Maximum moves and interactions"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between actions"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := logging.New(logging.Options{Debug: cmd.Bool("v")})
			defer logging.Sync(logger)

			client := NewClient(cmd.String("url"))
			if err := openSession(ctx, client, cmd.String("config"), cmd.String("continue"), cmd.String("session-file"), logger); err != nil {
				return err
			}

			state, err := client.Reset(ctx)
			if err != nil {
				return err
			}
			logger.Info("game reset", zap.String("session_id", client.SessionID()), zap.Stringer("cell", state.Cell))

			return play(ctx, client, NewGreedyStrategy(), cmd.Int("max-moves"), cmd.Duration("delay"), logger)
		},
	}
}

// openSession resumes the requested or remembered session, or creates a new one
func openSession(ctx context.Context, client *Client, configID, resume, sessionFile string, logger *zap.Logger) error {
	if resume == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resume = string(bytes.TrimSpace(data))
		}
	}

	if resume != "" {
		_, err := client.Resume(ctx, resume)
		if err == nil {
			logger.Info("session resumed", zap.String("session_id", resume))
			return nil
		}
		logger.Warn("failed to resume session, creating a new one", zap.String("session_id", resume), zap.Error(err))
	}

	if _, err := client.CreateSession(ctx, configID); err != nil {
		return err
	}
	logger.Info("session created", zap.String("session_id", client.SessionID()))

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			logger.Warn("failed to save session ID", zap.Error(err))
		}
	}
	return nil
}

// play runs the strategy until victory, the move budget, or cancellation
func play(ctx context.Context, client *Client, strategy *GreedyStrategy, maxMoves int, delay time.Duration, logger *zap.Logger) error {
	for actions := 0; actions < maxMoves; actions++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		view, err := client.Tokens(ctx)
		if err != nil {
			return err
		}

		action := strategy.Next(view.PlayerPos, view.HeldValue, view.Tokens)
		if action.Token != "" {
			result, err := client.Interact(ctx, action.Token)
			if err != nil {
				return err
			}
			logger.Debug("interact",
				zap.String("token", action.Token),
				zap.String("outcome", string(result.Outcome.Kind)),
				zap.Int("held", result.Outcome.HeldValue))

			if result.GameState != nil && result.GameState.Victory {
				logger.Info("🎉 VICTORY!",
					zap.Int("actions", actions+1),
					zap.Int("merges", result.GameState.Merges),
					zap.String("session_id", client.SessionID()))
				return nil
			}
		} else {
			result, err := client.Move(ctx, action.Direction)
			if err != nil {
				return err
			}
			if result.Step != nil && result.Step.CellChanged {
				logger.Info("entered cell",
					zap.Stringer("cell", result.Step.Cell),
					zap.Int("tokens", result.Step.TokensInCell),
					zap.Int("held", view.HeldValue))
			}
		}

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	logger.Warn("move budget exhausted", zap.Int("max_moves", maxMoves), zap.String("session_id", client.SessionID()))
	return ErrNoVictory
}
