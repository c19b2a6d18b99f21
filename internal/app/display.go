// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
)

// ssd1306Addr is the address the ssd1306 driver always talks to.
const ssd1306Addr = 0x3C

// remapBus redirects transactions aimed at one address to another, so a
// display strapped to 0x3D can be driven too.
type remapBus struct {
	i2c.Bus
	from, to uint16
}

func (b *remapBus) Tx(addr uint16, w, r []byte) error {
	if addr == b.from {
		addr = b.to
	}
	return b.Bus.Tx(addr, w, r)
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// renderAttitude lays out attitude and rotation, one axis per line.
func renderAttitude(att, rot orientation.Pose, haveAtt, haveRot bool) *image1bit.VerticalLSB {
	img, d := newCanvas()
	if !haveAtt {
		drawLine(d, 0, 26, "Attitude")
		drawLine(d, 0, 39, "Waiting...")
		return img
	}
	drawLine(d, 0, 13, "    deg   deg/s")
	for i, axis := range []struct {
		label    string
		ang, vel float64
	}{
		{"Y", att.Yaw, rot.Yaw},
		{"P", att.Pitch, rot.Pitch},
		{"R", att.Roll, rot.Roll},
	} {
		line := fmt.Sprintf("%s:%6.1f", axis.label, axis.ang)
		if haveRot {
			line += fmt.Sprintf(" %6.1f", axis.vel)
		}
		drawLine(d, 0, 26+13*i, line)
	}
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := newCanvas()
	drawLine(d, 10, 26, "IMU Attitude")
	drawLine(d, 5, 43, "Waiting for")
	drawLine(d, 25, 56, "DMP")
	return img
}

// RunDisplay shows the attitude received over MQTT on an SSD1306 OLED
// every DISPLAY_UPDATE_INTERVAL until ctx is done.
func RunDisplay(ctx context.Context, cfg *config.Config) error {
	bus, err := sensors.OpenI2C(cfg.DisplayI2CBus)
	if err != nil {
		return errors.Wrap(err, "display")
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(&remapBus{Bus: bus, from: ssd1306Addr, to: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize display")
	}
	defer func() {
		if err := dev.Halt(); err != nil {
			log.Warnf("display: halt: %v", err)
		}
	}()
	log.Infof("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Warnf("display: error showing splash: %v", err)
	}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	var data latest
	if err := subscribePoses(client, cfg, "display", data.setAttitude, data.setRotation); err != nil {
		return err
	}

	ticker := time.NewTicker(config.Millis(cfg.DisplayUpdateInterval))
	defer ticker.Stop()
	log.Info("display: starting update loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			att, haveAtt := data.getAttitude()
			rot, haveRot := data.getRotation()
			if err := dev.Draw(dev.Bounds(), renderAttitude(att, rot, haveAtt, haveRot), image.Point{}); err != nil {
				log.Warnf("display: error updating display: %v", err)
			}
		}
	}
}
