package dmp

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuaternionFromPacket(t *testing.T) {
	packet := make([]byte, PacketSize)
	// w = 1.0, x = -0.5 in Q14, low halves of each word are ignored.
	packet[0], packet[1], packet[2], packet[3] = 0x40, 0x00, 0xAA, 0xBB
	packet[4], packet[5] = 0xE0, 0x00

	q, err := QuaternionFromPacket(packet)
	require.NoError(t, err)
	assert.Equal(t, Quaternion{W: 1, X: -0.5}, q)
}

func TestQuaternionFromShortPacket(t *testing.T) {
	_, err := QuaternionFromPacket(make([]byte, 15))
	assert.True(t, errors.Is(err, ErrShortPacket))

	err = EncodeQuaternion(make([]byte, 3), Quaternion{W: 1})
	assert.True(t, errors.Is(err, ErrShortPacket))
}

func TestIdentityIsLevel(t *testing.T) {
	q := Quaternion{W: 1}
	g := Gravity(q)
	assert.Equal(t, 0.0, g.X)
	assert.Equal(t, 0.0, g.Y)
	assert.Equal(t, 1.0, g.Z)
	assert.Equal(t, YawPitchRoll{}, EulerAngles(q, g))
}

func TestSingleAxisRotations(t *testing.T) {
	const angle = 30 * math.Pi / 180
	for _, tc := range []struct {
		name string
		in   YawPitchRoll
		want YawPitchRoll
	}{
		{"yaw", YawPitchRoll{Yaw: angle}, YawPitchRoll{Yaw: -angle}},
		{"pitch", YawPitchRoll{Pitch: angle}, YawPitchRoll{Pitch: -angle}},
		{"roll", YawPitchRoll{Roll: angle}, YawPitchRoll{Roll: angle}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			packet := make([]byte, PacketSize)
			require.NoError(t, EncodeQuaternion(packet, FromEuler(tc.in)))

			_, got, err := Decode(packet)
			require.NoError(t, err)
			assert.InDelta(t, tc.want.Yaw, got.Yaw, 1e-3)
			assert.InDelta(t, tc.want.Pitch, got.Pitch, 1e-3)
			assert.InDelta(t, tc.want.Roll, got.Roll, 1e-3)
		})
	}
}

func TestDegrees(t *testing.T) {
	d := YawPitchRoll{Yaw: math.Pi, Pitch: math.Pi / 2, Roll: -math.Pi / 4}.Degrees()
	assert.InDelta(t, 180.0, d.Yaw, 1e-9)
	assert.InDelta(t, 90.0, d.Pitch, 1e-9)
	assert.InDelta(t, -45.0, d.Roll, 1e-9)
}
