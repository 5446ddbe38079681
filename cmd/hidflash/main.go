package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/synthread/go-hidflash/firmware"
	"github.com/synthread/go-hidflash/flash"
	"github.com/synthread/go-hidflash/monitor"
	"github.com/synthread/go-hidflash/usbhid"
)

func main() {
	var (
		file    = flag.String("f", "", "firmware file to flash (.hex, .ehex or raw binary)")
		vid     = flag.Uint("vid", 0x16C0, "usb vendor id of the bootloader")
		pid     = flag.Uint("pid", 0x0478, "usb product id of the bootloader")
		mon     = flag.Bool("monitor", false, "tail text output from the device's serial port")
		port    = flag.String("p", "/dev/ttyACM0", "serial port for -monitor")
		baud    = flag.Int("baud", monitor.DefaultBaud, "baud rate for -monitor")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	switch {
	case *file != "":
		if err := flashFile(*file, uint16(*vid), uint16(*pid)); err != nil {
			logrus.Fatal(err)
		}
	case *mon:
		if err := tailSerial(*port, *baud); err != nil {
			logrus.Fatal(err)
		}
	default:
		flag.PrintDefaults()
		logrus.Fatal("nothing to do: provide -f or -monitor")
	}
}

func flashFile(path string, vid, pid uint16) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	img := &firmware.Image{
		Raw:      raw,
		Filename: filepath.Base(path),
		Device:   firmware.DeviceID{VendorID: vid, ProductID: pid},
	}

	sets, err := img.BuildBlocks()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d main blocks, %d loader blocks\n",
		img.Filename, len(sets.Main), len(sets.Loader))

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Flashing"),
		progressbar.OptionOnCompletion(func() { fmt.Println("\nDone, device rebooting") }),
	)

	engine := flash.New(usbhid.New(vid, pid))
	if err := engine.Flash(sets, func(fraction float64) {
		_ = bar.Set(int(fraction * 100))
	}); err != nil {
		return err
	}

	return bar.Finish()
}

func tailSerial(port string, baud int) error {
	m := monitor.New()
	m.OnLine(func(line string) {
		fmt.Println(line)
	})

	if err := m.Open(monitor.Config{Port: port, Baud: baud}); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return m.Close()
}
