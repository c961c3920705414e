package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/geo"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
	gamesession "github.com/wricardo/mcp-training/plantmerge/game/session"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	broker   *geo.Broker
	saves    int
}

func NewMockSessionManager(broker *geo.Broker) *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		broker:   broker,
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	if m.broker != nil {
		eng.SetLocationFeed(m.broker.Feed(id))
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) SaveAllSessions() error {
	m.saves += len(m.sessions)
	return nil
}

func (m *MockSessionManager) DeleteFromMemory(id string) error {
	session, exists := m.sessions[id]
	if !exists {
		return service.ErrSessionNotFound
	}
	session.Engine.Stop()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			session.Engine.Stop()
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := engine.DefaultGameConfig()
	defaultConfig.Name = "test"

	quick := engine.DefaultGameConfig()
	quick.Name = "quick"
	quick.WinValue = 2

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":  defaultConfig,
			"quick": quick,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			WinValue:    config.WinValue,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T, allowDirect bool) (service.GameService, *MockSessionManager, *geo.Broker) {
	t.Helper()
	broker := geo.NewBroker(allowDirect, nil)
	sessions := NewMockSessionManager(broker)
	return service.NewGameService(sessions, NewMockConfigManager(), broker, nil), sessions, broker
}

func createSession(t *testing.T, svc service.GameService, config string) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), config)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return info
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantErr    bool
	}{
		{name: "create with default config", configName: "", wantConfig: "test"},
		{name: "create with specific config", configName: "quick", wantConfig: "quick"},
		{name: "create with invalid config", configName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if info.ID == "" {
				t.Error("Expected session ID to be set")
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %s, got %s", tt.wantConfig, info.ConfigName)
			}
			if info.GameState == nil || info.GameState.Status != "In hand: empty" {
				t.Error("Expected a fresh game state")
			}
		})
	}

	if got := svc.Metrics(ctx).SessionsCreated; got != 2 {
		t.Errorf("Expected 2 sessions created, got %d", got)
	}
}

func TestGameService_GetSessionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	_, err := svc.GetSession(context.Background(), "nope")
	if !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	result, err := svc.Move(ctx, info.ID, "north", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected move to succeed: %s", result.Message)
	}
	if result.Step == nil || result.Step.Dir != "north" {
		t.Errorf("Expected step info for north, got %+v", result.Step)
	}
	if len(result.Events) == 0 || result.Events[0].Type != service.EventMove {
		t.Errorf("Expected move event, got %+v", result.Events)
	}
	if result.GameState.PlayerPos.Lat <= info.GameState.PlayerPos.Lat {
		t.Error("Expected player to move north")
	}
	if sessions.saves == 0 {
		t.Error("Expected session to be persisted after move")
	}

	// Invalid direction fails without error
	result, err = svc.Move(ctx, info.ID, "diagonal", false)
	if err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if result.Success {
		t.Error("Expected invalid direction to fail")
	}

	// Reset flag restores the origin before moving
	result, _ = svc.Move(ctx, info.ID, "east", true)
	if result.Events[0].Type != service.EventReset {
		t.Errorf("Expected reset event first, got %s", result.Events[0].Type)
	}
	if result.GameState.PlayerPos.Lat != info.GameState.PlayerPos.Lat {
		t.Error("Expected reset to restore the starting latitude")
	}

	if _, err := svc.Move(ctx, "missing", "north", false); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	t.Run("all moves succeed", func(t *testing.T) {
		result, err := svc.BulkMove(ctx, info.ID, []string{"north", "north", "east"}, false)
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if !result.Success || result.MovesExecuted != 3 {
			t.Errorf("Expected 3 executed moves, got %d (success=%v)", result.MovesExecuted, result.Success)
		}
		if len(result.Steps) != 3 {
			t.Errorf("Expected 3 steps, got %d", len(result.Steps))
		}
		if result.DistanceMeters < 20 || result.DistanceMeters > 40 {
			t.Errorf("Expected roughly 30m walked, got %.1f", result.DistanceMeters)
		}
	})

	t.Run("stops at invalid direction", func(t *testing.T) {
		result, err := svc.BulkMove(ctx, info.ID, []string{"south", "jump", "south"}, true)
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if result.Success || result.MovesExecuted != 1 || result.StoppedOnMove != 2 {
			t.Errorf("Unexpected result: %+v", result)
		}
		if result.StopReasonCode != "invalid_direction" {
			t.Errorf("Expected invalid_direction, got %s", result.StopReasonCode)
		}
	})

	t.Run("truncates long sequences", func(t *testing.T) {
		moves := make([]string, engine.MaxBulkMoves+10)
		for i := range moves {
			moves[i] = "west"
		}
		result, err := svc.BulkMove(ctx, info.ID, moves, true)
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if !result.Truncated || result.Limit != engine.MaxBulkMoves || result.MovesExecuted != engine.MaxBulkMoves {
			t.Errorf("Expected truncation to %d, got %+v", engine.MaxBulkMoves, result)
		}
		if result.RequestedMoves != engine.MaxBulkMoves+10 {
			t.Errorf("Expected requested moves %d, got %d", engine.MaxBulkMoves+10, result.RequestedMoves)
		}
	})
}

func TestGameService_GeolocationFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	// Positions are refused while buttons are active
	_, err := svc.ReportPosition(ctx, info.ID, engine.LatLng{Lat: 37, Lng: -122})
	if !errors.Is(err, engine.ErrWrongMode) {
		t.Fatalf("Expected ErrWrongMode, got %v", err)
	}

	state, err := svc.SetMode(ctx, info.ID, "geolocation")
	if err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if state.Mode != engine.ModeGeolocation {
		t.Fatalf("Expected geolocation mode, got %s", state.Mode)
	}

	target := engine.LatLng{Lat: 37.0, Lng: -122.0}
	result, err := svc.ReportPosition(ctx, info.ID, target)
	if err != nil {
		t.Fatalf("ReportPosition failed: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("Expected position to be accepted: %s", result.Message)
	}
	d := result.GameState.PlayerPos.Sub(target)
	if d.Lat > 1e-9 || d.Lat < -1e-9 || d.Lng > 1e-9 || d.Lng < -1e-9 {
		t.Errorf("Expected player at %v, got %v", target, result.GameState.PlayerPos)
	}
	if result.Step == nil || !result.Step.CellChanged {
		t.Error("Expected a cell change after a long jump")
	}

	// Buttons are rejected while following location
	move, _ := svc.Move(ctx, info.ID, "north", false)
	if move.Success {
		t.Error("Expected button move to be rejected in geolocation mode")
	}

	// Back to buttons
	if _, err := svc.SetMode(ctx, info.ID, "buttons"); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	move, _ = svc.Move(ctx, info.ID, "north", false)
	if !move.Success {
		t.Error("Expected button move to work after switching back")
	}

	metrics := svc.Metrics(ctx)
	if metrics.ModeSwitches != 2 || metrics.PositionUpdates != 1 {
		t.Errorf("Unexpected metrics %+v", metrics)
	}
}

func TestGameService_SetModeUnsupported(t *testing.T) {
	ctx := context.Background()
	svc, _, broker := newTestService(t, false)
	info := createSession(t, svc, "")

	_, err := svc.SetMode(ctx, info.ID, "geolocation")
	if !errors.Is(err, engine.ErrGeolocationUnsupported) {
		t.Fatalf("Expected ErrGeolocationUnsupported, got %v", err)
	}
	state, _ := svc.GetGameState(ctx, info.ID)
	if state.Mode != engine.ModeButtons {
		t.Errorf("Expected to remain in buttons mode, got %s", state.Mode)
	}

	// A geolocation-capable client makes the switch possible
	remove := broker.AddSource(info.ID)
	defer remove()
	if _, err := svc.SetMode(ctx, info.ID, "geo"); err != nil {
		t.Errorf("Expected switch to succeed with a source, got %v", err)
	}

	if _, err := svc.SetMode(ctx, info.ID, "teleport"); !errors.Is(err, engine.ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
}

func TestGameService_ReportPositionValidation(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	for _, pos := range []engine.LatLng{{Lat: 91}, {Lng: -181}} {
		if _, err := svc.ReportPosition(context.Background(), info.ID, pos); !errors.Is(err, service.ErrInvalidPosition) {
			t.Errorf("Expected ErrInvalidPosition for %v, got %v", pos, err)
		}
	}
}

func TestGameService_InteractScenario(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t, true)
	info := createSession(t, svc, "quick")

	sess, _ := sessions.Get(info.ID)
	tokens := sess.Engine.GetTokens()
	first, second := tokens[0], tokens[1]

	// Stand on the first plant and pick it up
	sess.Engine.GetState().PlayerPos = first.Pos
	result, err := svc.Interact(ctx, info.ID, first.Key)
	if err != nil {
		t.Fatalf("Interact failed: %v", err)
	}
	if result.Outcome.Kind != engine.PickedUp || result.Events[0].Type != service.EventPickUp {
		t.Fatalf("Expected pick-up, got %s", result.Outcome.Kind)
	}
	if result.GameState.HeldValue != 1 {
		t.Errorf("Expected held value 1, got %d", result.GameState.HeldValue)
	}

	// Merge into the second plant wins the quick config (win value 2)
	sess.Engine.GetState().PlayerPos = second.Pos
	result, err = svc.Interact(ctx, info.ID, second.Key)
	if err != nil {
		t.Fatalf("Interact failed: %v", err)
	}
	if result.Outcome.Kind != engine.Merged || !result.Outcome.Victory {
		t.Fatalf("Expected winning merge, got %+v", result.Outcome)
	}
	if len(result.Events) != 2 || result.Events[1].Type != service.EventVictory {
		t.Errorf("Expected merge and victory events, got %+v", result.Events)
	}
	if result.GameState.Status != "In hand: empty" {
		t.Errorf("Expected empty hand, got %q", result.GameState.Status)
	}

	metrics := svc.Metrics(ctx)
	if metrics.PickUps != 1 || metrics.Merges != 1 || metrics.Victories != 1 {
		t.Errorf("Unexpected metrics %+v", metrics)
	}

	if _, err := svc.Interact(ctx, info.ID, "0:0#0"); !errors.Is(err, engine.ErrUnknownToken) {
		t.Errorf("Expected ErrUnknownToken, got %v", err)
	}
}

func TestGameService_NearbyTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	all, err := svc.NearbyTokens(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("NearbyTokens failed: %v", err)
	}
	if len(all.Tokens) != engine.DefaultTokenCount {
		t.Errorf("Expected %d tokens, got %d", engine.DefaultTokenCount, len(all.Tokens))
	}
	if all.InteractDistance != engine.DefaultInteractDistance {
		t.Errorf("Unexpected interact distance %v", all.InteractDistance)
	}

	near, _ := svc.NearbyTokens(ctx, info.ID, 100)
	if len(near.Tokens) > len(all.Tokens) {
		t.Error("Filtered listing larger than full listing")
	}
	for _, tok := range near.Tokens {
		if tok.Distance > 100 {
			t.Errorf("Token %s outside filter at %.1fm", tok.Key, tok.Distance)
		}
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	for _, dir := range []string{"north", "east", "south", "west", "north"} {
		if _, err := svc.Move(ctx, info.ID, dir, false); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantMoves int
		wantFirst int
		wantNext  bool
	}{
		{"default desc", service.HistoryOptions{}, 5, 5, false},
		{"asc page 1", service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, 2, 1, true},
		{"asc page 3", service.HistoryOptions{Page: 3, Limit: 2, Order: "asc"}, 1, 5, false},
		{"desc page 2", service.HistoryOptions{Page: 2, Limit: 2, Order: "desc"}, 2, 3, true},
		{"past the end", service.HistoryOptions{Page: 9, Limit: 2}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetMoveHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			if len(resp.Moves) != tt.wantMoves {
				t.Fatalf("Expected %d moves, got %d", tt.wantMoves, len(resp.Moves))
			}
			if tt.wantMoves > 0 && resp.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("Expected first move number %d, got %d", tt.wantFirst, resp.Moves[0].MoveNumber)
			}
			if resp.HasNext != tt.wantNext {
				t.Errorf("Expected HasNext=%v, got %v", tt.wantNext, resp.HasNext)
			}
			if resp.TotalMoves != 5 {
				t.Errorf("Expected 5 total moves, got %d", resp.TotalMoves)
			}
		})
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	createSession(t, svc, "")
	second := createSession(t, svc, "quick")

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, second.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, second.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if got := svc.Metrics(ctx).ActiveSessions; got != 1 {
		t.Errorf("Expected 1 active session, got %d", got)
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	svc.Move(ctx, info.ID, "north", false)
	svc.Move(ctx, info.ID, "north", false)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.PlayerPos != info.GameState.PlayerPos {
		t.Errorf("Expected reset to origin, got %v", state.PlayerPos)
	}
	if state.TotalMoves != 2 {
		t.Errorf("Expected cumulative history preserved, got %d", state.TotalMoves)
	}
}

func TestGameService_ReturnedStateIsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, true)
	info := createSession(t, svc, "")

	before, _ := svc.GetGameState(ctx, info.ID)
	svc.Move(ctx, info.ID, "north", false)

	if before.TotalMoves != 0 {
		t.Error("Expected earlier snapshot to stay unchanged")
	}
}

func TestGameService_ConcurrentReads(t *testing.T) {
	broker := geo.NewBroker(false, nil)
	sessions := gamesession.NewManager()
	sessions.SetFeedProvider(broker)
	svc := service.NewGameService(sessions, NewMockConfigManager(), broker, nil)
	ctx := context.Background()

	info := createSession(t, svc, "")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					errs <- err
					return
				}
				if _, err := svc.ListSessions(ctx); err != nil {
					errs <- err
					return
				}
				if g%2 == 0 {
					if _, err := svc.Move(ctx, info.ID, "north", false); err != nil {
						errs <- err
						return
					}
				}
			}
		}(g)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			svc.EvictIdleSessions(ctx, time.Hour)
			_ = svc.SaveAllSessions(ctx)
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access failed: %v", err)
	}

	state, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if state.CurrentMovesCount != 4*50 {
		t.Errorf("Expected %d moves, got %d", 4*50, state.CurrentMovesCount)
	}
}

func TestGameService_EvictIdleSessions(t *testing.T) {
	svc, sessions, _ := newTestService(t, false)
	ctx := context.Background()

	idle := createSession(t, svc, "")
	active := createSession(t, svc, "")
	sessions.sessions[idle.ID].LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := svc.EvictIdleSessions(ctx, time.Hour); removed != 1 {
		t.Errorf("Expected 1 evicted session, got %d", removed)
	}
	if _, err := svc.GetSession(ctx, idle.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected idle session to be evicted, got %v", err)
	}
	if _, err := svc.GetSession(ctx, active.ID); err != nil {
		t.Errorf("Expected active session to stay, got %v", err)
	}
}

func TestGameService_PruneSessions(t *testing.T) {
	svc, sessions, _ := newTestService(t, false)
	ctx := context.Background()

	keep := createSession(t, svc, "")
	drop := createSession(t, svc, "")

	pruned := svc.PruneSessions(ctx, func(id string) bool { return id == keep.ID })
	if pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, exists := sessions.sessions[drop.ID]; exists {
		t.Error("Expected rejected session to be dropped from memory")
	}
	if _, exists := sessions.sessions[keep.ID]; !exists {
		t.Error("Expected kept session to remain")
	}

	if err := svc.SaveAllSessions(ctx); err != nil {
		t.Errorf("SaveAllSessions failed: %v", err)
	}
}
