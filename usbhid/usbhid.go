// Package usbhid provides a report transport backed by a USB interrupt OUT
// endpoint, suitable for bootloaders that accept raw HID-style reports.
package usbhid

import (
	"github.com/google/gousb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyOpen = errors.New("usb transport is already open")
var ErrNotOpen = errors.New("usb transport is not open")
var ErrDeviceNotFound = errors.New("no matching usb device found")
var ErrNoOutEndpoint = errors.New("device has no interrupt OUT endpoint")

// Transport owns one USB device connection for the duration of a flash
// operation. It implements the flash engine's Transport interface.
type Transport struct {
	vendor  gousb.ID
	product gousb.ID

	ctx     *gousb.Context
	dev     *gousb.Device
	release func()
	out     *gousb.OutEndpoint
}

// New creates a transport targeting the device with the given vendor and
// product ids. The device is not touched until Open.
func New(vendor, product uint16) *Transport {
	return &Transport{
		vendor:  gousb.ID(vendor),
		product: gousb.ID(product),
	}
}

// Open claims the device's default interface and resolves its interrupt OUT
// endpoint. Opening an already open transport fails fast.
func (t *Transport) Open() error {
	if t.ctx != nil {
		return ErrAlreadyOpen
	}

	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(t.vendor, t.product)
	if err != nil {
		_ = ctx.Close()
		return errors.Wrap(err, "could not open usb device")
	}
	if dev == nil {
		_ = ctx.Close()
		return ErrDeviceNotFound
	}

	if err := dev.SetAutoDetach(true); err != nil {
		_ = dev.Close()
		_ = ctx.Close()
		return errors.Wrap(err, "could not detach kernel driver")
	}

	intf, release, err := dev.DefaultInterface()
	if err != nil {
		_ = dev.Close()
		_ = ctx.Close()
		return errors.Wrap(err, "could not claim interface")
	}

	var out *gousb.OutEndpoint
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeInterrupt {
			out, err = intf.OutEndpoint(ep.Number)
			break
		}
	}
	if err == nil && out == nil {
		err = ErrNoOutEndpoint
	}
	if err != nil {
		release()
		_ = dev.Close()
		_ = ctx.Close()
		return errors.Wrap(err, "could not resolve OUT endpoint")
	}

	t.ctx, t.dev, t.release, t.out = ctx, dev, release, out

	logrus.Debugf("usbhid open: %04x:%04x", uint16(t.vendor), uint16(t.product))

	return nil
}

// SendReport writes one full report to the endpoint.
func (t *Transport) SendReport(report []byte) error {
	if t.out == nil {
		return ErrNotOpen
	}

	n, err := t.out.Write(report)
	if err != nil {
		return errors.Wrap(err, "usb write")
	}
	if n != len(report) {
		return errors.Errorf("short usb write: %d of %d bytes", n, len(report))
	}
	return nil
}

// Close releases the interface and the device. Safe to call once per Open.
func (t *Transport) Close() error {
	if t.ctx == nil {
		return ErrNotOpen
	}

	t.release()
	_ = t.dev.Close()
	err := t.ctx.Close()

	t.ctx, t.dev, t.release, t.out = nil, nil, nil, nil

	logrus.Debug("usbhid close")

	return err
}
