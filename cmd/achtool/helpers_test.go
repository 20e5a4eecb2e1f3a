package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/achtool/achtool/internal/config"
	"github.com/achtool/achtool/pkg/engine"
	"github.com/achtool/achtool/pkg/ledger"
	"github.com/achtool/achtool/pkg/platform"
	"github.com/achtool/achtool/pkg/schema"
)

// cmdFakeClient is an in-memory platform client for command tests. A
// stats request immediately queues its own completion event.
type cmdFakeClient struct {
	gameID      uint64
	statsResult int32
	requestErr  error

	achieved map[string]bool
	failSet  map[string]bool

	failStore  bool
	storeCalls int

	statsCh chan platform.StatsReceived
}

func newCmdFakeClient(gameID uint64) *cmdFakeClient {
	return &cmdFakeClient{
		gameID:      gameID,
		statsResult: 1,
		achieved:    make(map[string]bool),
		failSet:     make(map[string]bool),
		statsCh:     make(chan platform.StatsReceived, 4),
	}
}

func (c *cmdFakeClient) RequestUserStats(userID uint64) (uint64, error) {
	if c.requestErr != nil {
		return 0, c.requestErr
	}
	c.statsCh <- platform.StatsReceived{GameID: c.gameID, Result: c.statsResult}
	return 1, nil
}

func (c *cmdFakeClient) StatsReceived() <-chan platform.StatsReceived { return c.statsCh }

func (c *cmdFakeClient) GetAchievementAndUnlockTime(id string) (bool, bool, uint32) {
	achieved, ok := c.achieved[id]
	if !ok {
		return false, false, 0
	}
	return true, achieved, 0
}

func (c *cmdFakeClient) SetAchievement(id string, achieved bool) bool {
	if c.failSet[id] {
		return false
	}
	c.achieved[id] = achieved
	return true
}

func (c *cmdFakeClient) GetNumAchievements() int { return len(c.achieved) }

func (c *cmdFakeClient) GetAchievementName(index int) string { return "" }

func (c *cmdFakeClient) GetStatInt(id string) (int32, bool) { return 0, false }

func (c *cmdFakeClient) SetStatInt(id string, v int32) bool { return true }

func (c *cmdFakeClient) GetStatFloat(id string) (float32, bool) { return 0, false }

func (c *cmdFakeClient) SetStatFloat(id string, v float32) bool { return true }

func (c *cmdFakeClient) StoreStats() bool {
	if c.failStore {
		return false
	}
	c.storeCalls++
	return true
}

func (c *cmdFakeClient) ResetAllStats(alsoAchievements bool) bool { return true }
func (c *cmdFakeClient) UserID() uint64                           { return 76561198000000001 }
func (c *cmdFakeClient) Close() error                             { return nil }

// cmdTestSchema mirrors a small game: one unlockable achievement, one
// protected one, one already achieved.
func cmdTestSchema() *schema.GameSchema {
	return &schema.GameSchema{
		GameID: 440,
		Achievements: []*schema.AchievementDefinition{
			{ID: "ACH_WIN", Name: "Winner"},
			{ID: "ACH_SECRET", Name: "Secret", Permission: 3},
			{ID: "ACH_DONE", Name: "Done"},
		},
	}
}

func cmdTestClient() *cmdFakeClient {
	c := newCmdFakeClient(440)
	c.achieved["ACH_WIN"] = false
	c.achieved["ACH_SECRET"] = false
	c.achieved["ACH_DONE"] = true
	return c
}

// installFakeSession points newGameSession at a canned client and schema
// for the duration of one test. It returns the ledger path the session
// records to.
func installFakeSession(t *testing.T, client platform.Client, gs *schema.GameSchema, openErr error) string {
	t.Helper()
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")

	orig := newGameSession
	newGameSession = func(cfg *config.Config, appID uint64, opts ...engine.SessionOption) (*engine.Session, platform.Client, error) {
		if openErr != nil {
			return nil, nil, openErr
		}
		all := append([]engine.SessionOption{
			engine.WithLedger(ledger.New(ledgerPath, "test-user", "full")),
			engine.WithSchemaLoader(func() (*schema.GameSchema, error) {
				if gs == nil {
					return nil, schema.ErrNotCached
				}
				return gs, nil
			}),
		}, opts...)
		s := engine.NewSession(client, appID, "", all...)
		return s, client, nil
	}
	t.Cleanup(func() { newGameSession = orig })
	return ledgerPath
}

var errDriverRefused = errors.New("driver refused")
