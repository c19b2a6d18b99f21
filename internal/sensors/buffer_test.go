package sensors

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

func TestBufferZeroValue(t *testing.T) {
	var b Buffer
	assert.Equal(t, orientation.Pose{}, b.Attitude())
	assert.Equal(t, orientation.Pose{}, b.Rotation())
	_, ok := b.Latest()
	assert.False(t, ok)
}

func TestBufferLayout(t *testing.T) {
	var b Buffer
	now := time.Unix(1700000000, 0)
	b.Store(Sample{
		Attitude:   orientation.Pose{Yaw: 1, Pitch: 2, Roll: 3},
		Rotation:   orientation.Pose{Yaw: 4, Pitch: 5, Roll: 6},
		Quaternion: dmp.Quaternion{W: 1},
		Time:       now,
	})

	assert.Equal(t, [6]float64{1, 2, 3, 4, 5, 6}, b.Slots())
	assert.Equal(t, orientation.Pose{Yaw: 1, Pitch: 2, Roll: 3}, b.Attitude())
	assert.Equal(t, orientation.Pose{Yaw: 4, Pitch: 5, Roll: 6}, b.Rotation())
	assert.Equal(t, dmp.Quaternion{W: 1}, b.Quaternion())

	s, ok := b.Latest()
	assert.True(t, ok)
	assert.Equal(t, now, s.Time)
	assert.Equal(t, uint64(1), b.Count())
}

// Readers never see a mix of two stores.
func TestBufferNoTornReads(t *testing.T) {
	var b Buffer
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float64(i)
			b.Store(Sample{
				Attitude: orientation.Pose{Yaw: v, Pitch: v, Roll: v},
				Rotation: orientation.Pose{Yaw: v, Pitch: v, Roll: v},
			})
		}
	}()

	for i := 0; i < 10000; i++ {
		s := b.Slots()
		for _, v := range s[1:] {
			if v != s[0] {
				t.Fatalf("torn read: %v", s)
			}
		}
	}
	close(stop)
	wg.Wait()
}
