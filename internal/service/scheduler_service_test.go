package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/service"
)

func TestValidateDailyTime(t *testing.T) {
	for _, valid := range []string{"00:00", "09:30", "23:59"} {
		assert.NoError(t, service.ValidateDailyTime(valid), "time %q", valid)
	}
	for _, invalid := range []string{"24:00", "12:60", "1230", "12:3a", "b:30", ""} {
		assert.Error(t, service.ValidateDailyTime(invalid), "time %q", invalid)
	}
}

func TestSchedulerService_ScheduleAndRemove(t *testing.T) {
	scheduler := service.NewSchedulerService(time.UTC)

	id, err := scheduler.ScheduleDaily("09:30", func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)

	// Removing twice must be safe.
	scheduler.Remove(id)
	scheduler.Remove(id)

	_, err = scheduler.ScheduleDaily("9:99", func() {})
	require.Error(t, err)
}
