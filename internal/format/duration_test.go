package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DurationTestSuite struct {
	suite.Suite
	reference time.Time
}

func TestDurationSuite(t *testing.T) {
	suite.Run(t, new(DurationTestSuite))
}

func (suite *DurationTestSuite) SetupTest() {
	suite.reference = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *DurationTestSuite) TestFormatDuration() {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected string
	}{
		{"zero", 0, "0m"},
		{"under a minute truncates", 59 * time.Second, "0m"},
		{"minutes only", 45 * time.Minute, "45m"},
		{"exactly one hour", time.Hour, "1h 0m"},
		{"ninety minutes", 90 * time.Minute, "1h 30m"},
		{"seconds are dropped", 90*time.Minute + 59*time.Second, "1h 30m"},
		{"just under a day", 23*time.Hour + 59*time.Minute, "23h 59m"},
		{"exactly one day", 24 * time.Hour, "1d 0h"},
		{"twenty five hours", 25 * time.Hour, "1d 1h"},
		{"minutes hidden once days show", 49*time.Hour + 30*time.Minute, "2d 1h"},
		{"long running", 10*24*time.Hour + 5*time.Hour, "10d 5h"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			start := suite.reference.Add(-tc.elapsed)
			suite.Equal(tc.expected, FormatDuration(start, suite.reference))
		})
	}
}

func (suite *DurationTestSuite) TestFormatDurationNegativeIsClamped() {
	start := suite.reference.Add(5 * time.Minute)
	suite.Equal("0m", FormatDuration(start, suite.reference))

	start = suite.reference.Add(3 * 24 * time.Hour)
	suite.Equal("0m", FormatDuration(start, suite.reference))
}

func (suite *DurationTestSuite) TestFormatDurationZeroStart() {
	suite.Equal("0m", FormatDuration(time.Time{}, suite.reference))
}

func (suite *DurationTestSuite) TestFormatDurationAcrossZones() {
	start := time.Date(2024, 6, 1, 10, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	// 10:30 at UTC+2 is 08:30 UTC, three and a half hours before the reference.
	suite.Equal("3h 30m", FormatDuration(start, suite.reference))
}

func (suite *DurationTestSuite) TestFormatSince() {
	suite.Equal("5m", FormatSince(time.Now().Add(-5*time.Minute-10*time.Second)))
}
