package session

import (
	"testing"
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)
	gameConfig := configManager.GetDefault()

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("0xa1", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)

		session, err := manager2.Get("0xA1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if session.ID != "0xa1" {
			t.Errorf("Expected ID 0xa1, got %s", session.ID)
		}

		again, err := manager2.Get("0xa1")
		if err != nil {
			t.Fatalf("Failed to get session from memory: %v", err)
		}
		if again != session {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, err := manager.Get("0xa1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		session.Engine.NewGame("persisted", [32]byte{3})
		if err := session.Engine.Reveal(); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}
		if err := session.Engine.Move(component.DownRight, component.Safe); err != nil {
			t.Fatalf("Move() error = %v", err)
		}

		if err := manager.Save("0xa1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager3 := NewManagerWithPersistence(persistence)
		loaded, err := manager3.Get("0xa1")
		if err != nil {
			t.Fatalf("Failed to load session after manual save: %v", err)
		}
		state := loaded.Engine.GetState()
		if state == nil || state.Name != "persisted" {
			t.Fatalf("Game not persisted: %+v", state)
		}
		if state.PlayerPos.X != 1 || state.PlayerPos.Y != 1 {
			t.Errorf("Player position not persisted, got %+v", state.PlayerPos)
		}
		if len(loaded.Engine.GetHistory()) == 0 {
			t.Error("History should be persisted")
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		session, err := manager.Create("0xde", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if err := manager.Delete(session.ID); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists(session.ID) {
			t.Error("Session should be removed from persistence on delete")
		}
		if _, err := manager.Get(session.ID); err == nil {
			t.Error("Should not be able to get deleted session")
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		ids := []string{"0xb1", "0xb2", "0xb3"}
		for _, id := range ids {
			if _, err := manager.Create(id, gameConfig); err != nil {
				t.Fatalf("Failed to create session %s: %v", id, err)
			}
		}

		manager4 := NewManagerWithPersistence(persistence)
		if err := manager4.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}
		// 0xa1 plus the three above
		if manager4.Count() != 4 {
			t.Errorf("Expected 4 sessions after startup load, got %d", manager4.Count())
		}
	})

	t.Run("Evicted Session Reloads", func(t *testing.T) {
		session, _ := manager.Get("0xb1")
		session.LastAccessedAt = time.Now().Add(-48 * time.Hour)
		if n := manager.CleanupExpiredSessions(24 * time.Hour); n != 1 {
			t.Fatalf("CleanupExpiredSessions() = %d, want 1", n)
		}
		if _, err := manager.Get("0xb1"); err != nil {
			t.Errorf("evicted session should reload from disk: %v", err)
		}
	})

	t.Run("Save All Sessions", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("SaveAllSessions() error = %v", err)
		}
		ids, _ := persistence.ListAll()
		if len(ids) != manager.Count() {
			t.Errorf("persisted %d sessions, manager holds %d", len(ids), manager.Count())
		}
	})
}
