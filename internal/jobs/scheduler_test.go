package jobs

import (
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
)

func TestJobSpecsParse(t *testing.T) {
	for _, spec := range []string{overdueSweepSpec, valuationSnapshotSpec} {
		_, err := cron.ParseStandard(spec)
		assert.NoError(t, err, "spec %q", spec)
	}
}
