package engine

import (
	"time"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

type mockClock struct{}

func (m mockClock) Now() time.Time {
	return time.Unix(1606850863, 419123456) // 2020-12-01 19:27:43.419123456 +0000 UTC
}

// tickingClock advances by step on every call to Now.
type tickingClock struct {
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (suite *EngineSuite) TestOsTime() {
	results := suite.eval(`return os.time()`)
	suite.Equal([]value.Value{value.NewNumber(1606850863)}, results)
}

func (suite *EngineSuite) TestOsTimeFromTable() {
	results := suite.eval(`return os.time({year = 2020, month = 12, day = 1, hour = 0})`)
	want := time.Date(2020, 12, 1, 0, 0, 0, 0, time.Local).Unix()
	suite.Equal([]value.Value{value.NewNumber(float64(want))}, results)

	err := suite.evalErr(`return os.time({year = 2020})`)
	suite.Equal("field 'month' missing in date table", err.Message)
}

func (suite *EngineSuite) TestOsClock() {
	clock := &tickingClock{
		now:  time.Unix(1606850863, 0),
		step: 250 * time.Millisecond,
	}
	e := New(WithClock(clock))

	results, err := e.EvalChunk(mustParse(suite, `return os.clock(), os.clock()`))
	suite.Require().NoError(err)
	suite.Equal([]value.Value{value.NewNumber(0.25), value.NewNumber(0.5)}, results)
}
