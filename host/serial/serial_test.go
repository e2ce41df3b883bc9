package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wakebridge/host/config"
)

func TestFromConfig(t *testing.T) {
	t.Parallel()

	s := FromConfig(&config.Config{
		Device:      "/dev/ttyACM3",
		Baud:        115200,
		ReadTimeout: 50 * time.Millisecond,
	})
	require.Equal(t, &Settings{Device: "/dev/ttyACM3", Baud: 115200, ReadTimeout: 50 * time.Millisecond}, s)
}

func TestOpenRejectsNil(t *testing.T) {
	t.Parallel()

	_, err := Open(nil)
	require.ErrorIs(t, err, errNoSettings)
}
