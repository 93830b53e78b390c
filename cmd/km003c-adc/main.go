// Command km003c-adc is a thin CLI over usbsession: it opens a KM003C
// session, authenticates, and either prints one ADC+PD snapshot or streams
// ADC-queue samples at a configurable rate, in the teacher's cmd/<name>
// style (flags layered over a koanf-loaded config, colored terminal output,
// a spinner during the slow auth/streaming-enable step).
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

	"github.com/jpl-power/km003c/capture"
	"github.com/jpl-power/km003c/payload"
	"github.com/jpl-power/km003c/usbsession"
)

// requestRateLimit bounds how fast this binary fires requests at the
// device, independent of its own poll interval -- the same 15 req/s
// burst-15 ceiling nkt's AddressScan used to throttle its own register
// scan.
const requestRateLimit = 15

// ConfigFileName is the optional YAML file consulted for defaults before
// flags are applied, matching andorhttp2's mkconf/conf convention.
const ConfigFileName = "km003c-adc.yml"

var k = koanf.New(".")

type config struct {
	Iface   string `yaml:"Iface"`
	NoReset bool   `yaml:"NoReset"`
	Rate    int    `yaml:"Rate"`
	Dump    bool   `yaml:"Dump"`
}

func loadConfig() config {
	k.Load(structs.Provider(config{Iface: "vendor", NoReset: false, Rate: -1, Dump: false}, "yaml"), nil)
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
	rateIdx := flag.Int("rate", cfg.Rate, "AdcQueue graph sample-rate index (0-3); omit or -1 for a one-shot ADC+PD read")
	dump := flag.Bool("dump", cfg.Dump, "capture raw request/response frames in memory and print a summary on exit")
	flag.Parse()

	iface := usbsession.Vendor
	if *ifaceFlag == "hid" {
		iface = usbsession.HID
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

	var sink *capture.InMemorySink
	if *dump {
		sink = capture.NewInMemorySink()
		sess.Sink = sink
		sess.SessionID = fmt.Sprintf("km003c-adc-%s", iface)
		defer dumpSummary(sink)
	}

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
	color.Cyan("connected to %s (hw %s, fw %s)", sess.DeviceInfo.Model, sess.DeviceInfo.HWVersion, sess.DeviceInfo.FWVersion)

	if *rateIdx < 0 {
		printSnapshot(sess)
		return
	}
	streamGraph(sess, payload.GraphSampleRate(*rateIdx))
}

// dumpSummary prints every captured frame plus an XMODEM CRC-16 over its
// raw bytes, a cheap integrity check on what was actually seen on the wire.
func dumpSummary(sink *capture.InMemorySink) {
	records := sink.Records()
	color.Cyan("captured %d frames", len(records))
	for _, r := range records {
		fmt.Printf("%s crc=%04x\n", r.String(), payload.Checksum(r.RawBytes))
	}
}

func printSnapshot(sess *usbsession.Session) {
	adc, status, err := sess.RequestADCWithPD()
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Vbus=%.3fV Ibus=%.3fA Power=%.3fW Temp=%.0fC\n", adc.VbusV, adc.IbusA, adc.PowerW, adc.TempC)
	fmt.Printf("PD: Vbus=%.3fV Ibus=%.3fA Cc1=%.3fV Cc2=%.3fV\n", status.VbusV, status.IbusA, status.Cc1V, status.Cc2V)
}

func streamGraph(sess *usbsession.Session, rate payload.GraphSampleRate) {
	hz, _ := rate.AsHz()
	color.Yellow("starting graph at rate index %d (%d Hz)", rate, hz)
	if err := sess.StartGraph(rate); err != nil {
		color.Red("start graph failed: %v", err)
		os.Exit(1)
	}
	defer sess.StopGraph()

	pollEvery := time.Second
	if hz > 0 {
		pollEvery = time.Duration(2e9 / hz)
	}
	for {
		samples, gaps, err := sess.RequestADCQueue()
		if err != nil {
			color.Red("poll failed: %v", err)
			return
		}
		for _, g := range gaps {
			color.Red("dropped samples: %d -> %d (stride %d)", g.From, g.To, g.Stride)
		}
		for _, s := range samples {
			fmt.Printf("seq=%d Vbus=%.3fV Ibus=%.3fA\n", s.Sequence, s.VbusV, s.IbusA)
		}
		time.Sleep(pollEvery)
	}
}

