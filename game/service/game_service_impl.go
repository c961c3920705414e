package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/logging"
)

// gameServiceImpl implements the GameService interface. One mutex serializes
// every session access, reads included: looking a session up touches its
// access time, and storage snapshots read engine state.
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	positions PositionPublisher
	metrics   *Metrics
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewGameService creates a new game service instance. positions may be nil,
// in which case position updates are refused.
func NewGameService(sessions SessionManager, configs ConfigManager, positions PositionPublisher, logger *zap.Logger) GameService {
	return &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		positions: positions,
		metrics:   newMetrics(),
		logger:    logging.OrNop(logger).Named("service"),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// session looks a session up and marks it accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	_ = s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

// persist saves a session after a state change; failures are logged, never returned
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session_id", sessionID),
			zap.String("op", op),
			zap.Error(err))
	}
}

func (s *gameServiceImpl) info(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				// Provide helpful error message with available options
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.inc(&s.metrics.SessionsCreated)
	s.logger.Info("session created", zap.String("session_id", sess.ID), zap.String("config", config.Name))

	return s.info(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.inc(&s.metrics.SessionsDeleted)
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// Move executes a single button move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		events = append(events, s.resetLocked(sess))
	}

	prev := sess.Engine.GetState()
	prevPos, prevCell := prev.PlayerPos, prev.Cell
	success := sess.Engine.Move(direction)
	s.metrics.IncMove(success)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success: success,
		Message: state.Message,
		Events:  events,
	}

	if success {
		step := newStep(1, direction, prevPos, prevCell, state)
		result.Step = &step
		result.Events = append(result.Events, stepEvents(step)...)
	}

	s.persist(sess.ID, "move")
	result.GameState = state.Clone()
	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first failure
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		result.Events = append(result.Events, s.resetLocked(sess))
	}

	start := sess.Engine.GetState()
	result.StartPos = start.PlayerPos
	result.StartCell = start.Cell

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		prev := sess.Engine.GetState()
		prevPos, prevCell := prev.PlayerPos, prev.Cell

		success := sess.Engine.Move(move)
		s.metrics.IncMove(success)
		if !success {
			result.Success = false
			result.StoppedOnMove = i + 1
			if _, err := engine.ParseDirection(move); err != nil {
				result.StopReasonCode = "invalid_direction"
				result.StoppedReason = fmt.Sprintf("move %d: invalid direction %q", i+1, move)
			} else {
				result.StopReasonCode = "wrong_mode"
				result.StoppedReason = fmt.Sprintf("move %d: buttons are disabled in %s mode", i+1, sess.Engine.GetMode())
			}
			break
		}

		result.MovesExecuted++
		step := newStep(i+1, move, prevPos, prevCell, sess.Engine.GetState())
		result.Steps = append(result.Steps, step)
		result.DistanceMeters += engine.Distance(step.From, step.To)
		result.Events = append(result.Events, stepEvents(step)...)
	}

	end := sess.Engine.GetState()
	result.EndPos = end.PlayerPos
	result.EndCell = end.Cell
	result.Message = end.Message

	s.persist(sess.ID, "bulk_move")
	result.GameState = end.Clone()
	return result, nil
}

// ReportPosition feeds an absolute location to a session following geolocation
func (s *gameServiceImpl) ReportPosition(ctx context.Context, sessionID string, pos engine.LatLng) (*PositionResult, error) {
	if err := validatePosition(pos); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if s.positions == nil {
		return nil, ErrNoPositionFeed
	}
	if sess.Engine.GetMode() != engine.ModeGeolocation {
		return nil, fmt.Errorf("%w: switch to geolocation mode first", engine.ErrWrongMode)
	}

	prev := sess.Engine.GetState()
	prevPos, prevCell := prev.PlayerPos, prev.Cell

	delivered := s.positions.Publish(sess.ID, pos)
	s.metrics.inc(&s.metrics.PositionUpdates)

	state := sess.Engine.GetState()
	result := &PositionResult{
		Accepted: delivered,
		Message:  state.Message,
	}

	if delivered {
		step := newStep(1, "geolocation", prevPos, prevCell, state)
		result.Step = &step
		result.Events = stepEvents(step)
		s.persist(sess.ID, "position")
	} else {
		result.Message = "Position ignored: no active location subscription"
		s.logger.Warn("position not delivered", zap.String("session_id", sess.ID))
	}

	result.GameState = state.Clone()
	return result, nil
}

// SetMode switches the movement strategy of a session
func (s *gameServiceImpl) SetMode(ctx context.Context, sessionID, mode string) (*engine.GameState, error) {
	m, err := engine.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	prevMode := sess.Engine.GetMode()
	if err := sess.Engine.SetMode(m); err != nil {
		s.logger.Info("mode switch refused",
			zap.String("session_id", sess.ID),
			zap.String("mode", string(m)),
			zap.Error(err))
		return nil, err
	}

	if prevMode != m {
		s.metrics.inc(&s.metrics.ModeSwitches)
		s.logger.Debug("mode switched", zap.String("session_id", sess.ID), zap.String("mode", string(m)))
		s.persist(sess.ID, "mode")
	}

	return sess.Engine.GetState().Clone(), nil
}

// Interact clicks a token for a session
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID, tokenKey string) (*InteractResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	wasVictory := sess.Engine.IsVictory()
	out, err := sess.Engine.Interact(tokenKey)
	if err != nil {
		return nil, err
	}
	s.metrics.IncOutcome(out.Kind)

	state := sess.Engine.GetState()
	result := &InteractResult{
		Outcome: out,
		Message: out.Message,
		Events:  outcomeEvents(out, state.PlayerPos),
	}

	if out.Victory && !wasVictory {
		s.metrics.inc(&s.metrics.Victories)
		s.logger.Info("victory", zap.String("session_id", sess.ID), zap.Int("best_value", state.BestValue))
	}

	s.persist(sess.ID, "interact")
	result.GameState = state.Clone()
	return result, nil
}

// NearbyTokens lists tokens within the given distance, closest first; within <= 0 lists all
func (s *gameServiceImpl) NearbyTokens(ctx context.Context, sessionID string, within float64) (*TokensResult, error) {
	if math.IsNaN(within) || math.IsInf(within, 0) {
		return nil, fmt.Errorf("%w: distance filter must be finite", ErrInvalidPosition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	tokens := sess.Engine.GetNearbyTokens(within)
	if tokens == nil {
		tokens = []engine.NearbyToken{}
	}
	return &TokensResult{
		PlayerPos:        state.PlayerPos,
		HeldValue:        state.HeldValue,
		Within:           math.Max(within, 0),
		InteractDistance: sess.Config.InteractDistance,
		Tokens:           tokens,
	}, nil
}

// Reset resets a game session to its initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.resetLocked(sess)
	s.persist(sess.ID, "reset")
	return sess.Engine.GetState().Clone(), nil
}

func (s *gameServiceImpl) resetLocked(sess *Session) GameEvent {
	sess.Engine.Reset()
	s.metrics.inc(&s.metrics.Resets)
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return paginateHistory(sess.Engine.GetMoveHistory(), opts), nil
}

func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// EvictIdleSessions drops sessions idle for longer than maxAge from memory.
// They are saved first and reload from storage on the next access.
func (s *gameServiceImpl) EvictIdleSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.CleanupExpiredSessions(maxAge)
}

// PruneSessions drops from memory every session keep rejects, leaving storage alone
func (s *gameServiceImpl) PruneSessions(ctx context.Context, keep func(sessionID string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for _, sess := range s.sessions.List() {
		if keep(sess.ID) {
			continue
		}
		if err := s.sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			s.logger.Info("pruned session from memory", zap.String("session_id", sess.ID))
		}
	}
	return pruned
}

// SaveAllSessions writes every in-memory session to storage
func (s *gameServiceImpl) SaveAllSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.SaveAllSessions()
}

// Metrics returns the gameplay counters
func (s *gameServiceImpl) Metrics(ctx context.Context) MetricsSnapshot {
	return s.metrics.Snapshot(len(s.sessions.List()))
}

func validatePosition(pos engine.LatLng) error {
	if math.IsNaN(pos.Lat) || math.IsNaN(pos.Lng) {
		return fmt.Errorf("%w: coordinates must be numbers", ErrInvalidPosition)
	}
	if pos.Lat < -90 || pos.Lat > 90 {
		return fmt.Errorf("%w: lat must be between -90 and 90, got %v", ErrInvalidPosition, pos.Lat)
	}
	if pos.Lng < -180 || pos.Lng > 180 {
		return fmt.Errorf("%w: lng must be between -180 and 180, got %v", ErrInvalidPosition, pos.Lng)
	}
	return nil
}

// newStep describes one applied movement delta
func newStep(idx int, dir string, from engine.LatLng, fromCell engine.Cell, state *engine.GameState) StepInfo {
	if d, err := engine.ParseDirection(dir); err == nil {
		dir = string(d)
	}
	return StepInfo{
		Idx:          idx,
		Dir:          dir,
		From:         from,
		To:           state.PlayerPos,
		Cell:         state.Cell,
		CellChanged:  state.Cell != fromCell,
		TokensInCell: len(state.Tokens),
	}
}

func stepEvents(step StepInfo) []GameEvent {
	now := time.Now()
	to := step.To
	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s to (%.6f, %.6f)", step.Dir, to.Lat, to.Lng),
		Timestamp: now,
		Position:  &to,
	}}
	if step.CellChanged {
		events = append(events, GameEvent{
			Type:      EventCellChanged,
			Message:   fmt.Sprintf("Entered cell %s with %d plants", step.Cell, step.TokensInCell),
			Timestamp: now,
			Position:  &to,
		})
	}
	return events
}

var eventByOutcome = map[engine.OutcomeKind]string{
	engine.Rejected: EventRejected,
	engine.PickedUp: EventPickUp,
	engine.Merged:   EventMerge,
	engine.Swapped:  EventSwap,
}

func outcomeEvents(out engine.Outcome, pos engine.LatLng) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      eventByOutcome[out.Kind],
		Message:   out.Message,
		Timestamp: now,
		Position:  &pos,
		Token:     out.Token.Key,
	}}
	if out.Victory {
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   out.Message,
			Timestamp: now,
			Position:  &pos,
			Token:     out.Token.Key,
		})
	}
	return events
}
