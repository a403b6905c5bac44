// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/present"
)

// OpenSerial opens the diagnostic serial port.
func OpenSerial(cfg config.SerialConfig) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              uint(cfg.BaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}
	return port, nil
}

// XDRSentence encodes a reading as an NMEA transducer sentence with roll
// and pitch in degrees and the battery in volts. Angles are left empty
// until the first valid reading, the battery when none is fitted.
func XDRSentence(r present.Reading) string {
	roll, pitch := "", ""
	if r.Valid {
		roll = present.Format(r.Roll, 0, present.AnglePrec)
		pitch = present.Format(r.Pitch, 0, present.AnglePrec)
	}
	batt := ""
	if !r.NoBattery {
		batt = present.Format(r.Battery, 0, present.BatteryPrec)
	}

	body := fmt.Sprintf("IIXDR,A,%s,D,ROLL,A,%s,D,PITCH,U,%s,V,BATT", roll, pitch, batt)
	return "$" + body + "*" + nmea.Checksum(body)
}

// XDRWriter writes one sentence per published reading. Refreshes of an
// already written reading are skipped.
type XDRWriter struct {
	w       io.Writer
	lastSeq uint64
}

// NewXDRWriter writes sentences to w.
func NewXDRWriter(w io.Writer) *XDRWriter {
	return &XDRWriter{w: w}
}

// Render implements present.Renderer.
func (x *XDRWriter) Render(f present.Frame) error {
	if !f.HaveData || f.Seq == x.lastSeq {
		return nil
	}
	x.lastSeq = f.Seq
	if _, err := io.WriteString(x.w, XDRSentence(f.Reading)+"\r\n"); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	return nil
}
