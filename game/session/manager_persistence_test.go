package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerWithPersistence(t *testing.T) {
	levels := newLevelCatalogue(t)
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir, levels)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	manager := NewManagerWithPersistence(persistence)

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", levels.GetDefault())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		// New manager, no in-memory sessions
		manager2 := NewManagerWithPersistence(persistence)

		session, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if session.ID != "auto1" {
			t.Errorf("Expected ID auto1, got %s", session.ID)
		}

		session2, err := manager2.Get("AUTO1")
		if err != nil {
			t.Fatalf("Failed to get session from memory: %v", err)
		}
		if session2 != session {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, err := manager.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		originalPos := session.Engine.GetPlayerPosition()
		if !session.Engine.Move("right") {
			t.Fatal("Expected slide right to succeed")
		}

		if err := manager.Save("auto1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager3 := NewManagerWithPersistence(persistence)
		loaded, err := manager3.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to load session after manual save: %v", err)
		}
		if loaded.Engine.GetPlayerPosition() == originalPos {
			t.Error("Player position changes should be persisted")
		}
		if len(loaded.Engine.GetMoveHistory()) != 1 {
			t.Error("Move history should be persisted")
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		session, err := manager.Create("delete_test", levels.GetDefault())
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
		ids := []string{"startup1", "startup2", "startup3"}
		for _, id := range ids {
			if _, err := manager.Create(id, levels.GetDefault()); err != nil {
				t.Fatalf("Failed to create session %s: %v", id, err)
			}
		}

		// Simulates a server restart
		manager4 := NewManagerWithPersistence(persistence)
		if err := manager4.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}

		for _, id := range ids {
			if !manager4.Exists(id) {
				t.Errorf("Session %s should be loaded on startup", id)
			}
		}
		if manager4.Count() != 4 {
			t.Errorf("Expected 4 sessions (auto1 and three startup), got %d", manager4.Count())
		}
	})

	t.Run("Expired Sessions Leave Storage", func(t *testing.T) {
		session, err := manager.Create("stale", levels.GetDefault())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		session.LastAccessedAt = time.Now().Add(-48 * time.Hour)

		if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed != 1 {
			t.Errorf("Expected 1 expired session, got %d", removed)
		}
		if persistence.Exists("stale") {
			t.Error("Expired session file should be deleted")
		}
	})

	t.Run("Sync With Filesystem", func(t *testing.T) {
		// Remove one file behind the manager's back and add another
		if err := os.Remove(filepath.Join(tempDir, "startup3.json")); err != nil {
			t.Fatalf("Failed to remove session file: %v", err)
		}
		outside := NewManagerWithPersistence(persistence)
		if _, err := outside.Create("newcomer", levels.GetDefault()); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		removed, added, err := manager.SyncWithFilesystem()
		if err != nil {
			t.Fatalf("SyncWithFilesystem failed: %v", err)
		}
		if removed != 1 || added != 1 {
			t.Errorf("Expected 1 removed and 1 added, got %d and %d", removed, added)
		}
		if manager.Exists("startup3") || !manager.Exists("newcomer") {
			t.Error("Expected memory to mirror the sessions directory")
		}
	})

	t.Run("Save All Sessions", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("SaveAllSessions failed: %v", err)
		}
		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(ids) != manager.Count() {
			t.Errorf("Expected %d files, got %d", manager.Count(), len(ids))
		}
	})
}

func TestManagerWithoutPersistence(t *testing.T) {
	manager := NewManager()
	if _, err := manager.Create("mem1", createTestLevel()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := manager.Save("mem1"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
	if removed, added, err := manager.SyncWithFilesystem(); err != nil || removed != 0 || added != 0 {
		t.Errorf("Expected no-op sync, got %d %d %v", removed, added, err)
	}
}
