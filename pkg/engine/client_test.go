package engine

import (
	"github.com/achtool/achtool/pkg/platform"
)

// fakeClient is an in-memory platform client for tests.
type fakeClient struct {
	userID      uint64
	achieved    map[string]bool
	unlockTimes map[string]uint32
	intStats    map[string]int32
	floatStats  map[string]float32
	statsCh     chan platform.StatsReceived

	failSet   map[string]bool
	failStore bool

	setCalls   []string
	storeCalls int
	resetCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		userID:      76561198000000001,
		achieved:    make(map[string]bool),
		unlockTimes: make(map[string]uint32),
		intStats:    make(map[string]int32),
		floatStats:  make(map[string]float32),
		statsCh:     make(chan platform.StatsReceived, 4),
		failSet:     make(map[string]bool),
	}
}

func (c *fakeClient) RequestUserStats(userID uint64) (uint64, error) {
	return 1, nil
}

func (c *fakeClient) StatsReceived() <-chan platform.StatsReceived {
	return c.statsCh
}

func (c *fakeClient) GetAchievementAndUnlockTime(id string) (bool, bool, uint32) {
	achieved, ok := c.achieved[id]
	if !ok {
		return false, false, 0
	}
	return true, achieved, c.unlockTimes[id]
}

func (c *fakeClient) SetAchievement(id string, achieved bool) bool {
	if c.failSet[id] {
		return false
	}
	c.setCalls = append(c.setCalls, id)
	c.achieved[id] = achieved
	return true
}

func (c *fakeClient) GetNumAchievements() int {
	return len(c.achieved)
}

func (c *fakeClient) GetAchievementName(index int) string {
	return ""
}

func (c *fakeClient) GetStatInt(id string) (int32, bool) {
	v, ok := c.intStats[id]
	return v, ok
}

func (c *fakeClient) SetStatInt(id string, value int32) bool {
	if c.failSet[id] {
		return false
	}
	c.intStats[id] = value
	return true
}

func (c *fakeClient) GetStatFloat(id string) (float32, bool) {
	v, ok := c.floatStats[id]
	return v, ok
}

func (c *fakeClient) SetStatFloat(id string, value float32) bool {
	if c.failSet[id] {
		return false
	}
	c.floatStats[id] = value
	return true
}

func (c *fakeClient) StoreStats() bool {
	if c.failStore {
		return false
	}
	c.storeCalls++
	return true
}

func (c *fakeClient) ResetAllStats(alsoAchievements bool) bool {
	c.resetCalls++
	return true
}

func (c *fakeClient) UserID() uint64 { return c.userID }

func (c *fakeClient) Close() error { return nil }
