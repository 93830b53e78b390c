// Command km003c-pd is a thin CLI over usbsession focused on the PD
// side: it opens a session, authenticates, and polls PD status plus the
// PD event stream, printing connect/disconnect/message events as they
// arrive.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"
	"golang.org/x/time/rate"

	"github.com/jpl-power/km003c/payload"
	"github.com/jpl-power/km003c/usbsession"
)

// requestRateLimit bounds how fast either binary fires requests at the
// device, independent of the CLI's own poll interval -- the same 15 req/s
// burst-15 ceiling nkt's AddressScan used to throttle its own register
// scan.
const requestRateLimit = 15

const ConfigFileName = "km003c-pd.yml"

var k = koanf.New(".")

type config struct {
	Iface    string `yaml:"Iface"`
	NoReset  bool   `yaml:"NoReset"`
	PollRate string `yaml:"PollRate"`
}

func loadConfig() config {
	k.Load(structs.Provider(config{Iface: "hid", NoReset: false, PollRate: "500ms"}, "yaml"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such") {
			log.Fatalf("error loading %s: %v", ConfigFileName, err)
		}
	}
	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func main() {
	cfg := loadConfig()

	ifaceFlag := flag.String("iface", cfg.Iface, "USB interface profile to use: vendor|hid")
	noReset := flag.Bool("no-reset", cfg.NoReset, "skip the bus reset on the vendor profile's open sequence")
	pollRateFlag := flag.String("poll-rate", cfg.PollRate, "interval between PD polls, e.g. 500ms")
	flag.Parse()

	pollRate, err := time.ParseDuration(*pollRateFlag)
	if err != nil {
		color.Red("invalid -poll-rate: %v", err)
		os.Exit(1)
	}

	iface := usbsession.HID
	if *ifaceFlag == "vendor" {
		iface = usbsession.Vendor
	}

	open := usbsession.OpenWithBackoff
	if *noReset {
		open = usbsession.OpenWithBackoffSkippingReset
	}
	sess, err := open(iface)
	if err != nil {
		color.Red("open failed: %v", err)
		os.Exit(1)
	}
	defer sess.Close()
	sess.Limiter = rate.NewLimiter(requestRateLimit, requestRateLimit)

	spin, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " authenticating with device",
		SuffixAutoColon: true,
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	})
	if err == nil {
		spin.Start()
	}
	if err := sess.Authenticate(); err != nil {
		if spin != nil {
			spin.StopFailMessage(err.Error())
			spin.StopFail()
		}
		color.Red("authentication failed: %v", err)
		os.Exit(1)
	}
	if spin != nil {
		spin.Stop()
	}
	color.Cyan("connected to %s (serial %s)", sess.DeviceInfo.Model, sess.DeviceInfo.SerialID)

	for {
		status, err := sess.RequestPD()
		if err != nil {
			color.Red("PD status poll failed: %v", err)
		} else {
			fmt.Printf("Vbus=%.3fV Ibus=%.3fA Cc1=%.3fV Cc2=%.3fV\n", status.VbusV, status.IbusA, status.Cc1V, status.Cc2V)
		}

		events, err := sess.RequestPDEvents()
		if err != nil {
			color.Red("PD event poll failed: %v", err)
		} else {
			printEvents(events)
		}

		time.Sleep(pollRate)
	}
}

func printEvents(stream payload.PdEventStream) {
	for _, ev := range stream.Events {
		switch ev.Kind {
		case payload.PdEventConnect:
			color.Green("t=%d connect (sop=%d)", ev.Timestamp, ev.SOP)
		case payload.PdEventDisconnect:
			color.Yellow("t=%d disconnect (sop=%d)", ev.Timestamp, ev.SOP)
		case payload.PdEventMessage:
			fmt.Printf("t=%d message sop=%d %d bytes\n", ev.Timestamp, ev.SOP, len(ev.WireData))
		}
	}
}
