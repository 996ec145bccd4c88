// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	m "github.com/mkhts/lspos"
	"go.bug.st/serial"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		m.PrintE(err)
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	opt, err := args.cfg.LsOpt()
	if err != nil {
		return fmt.Errorf("invalid solver options: %w", err)
	}

	// Load input file
	epochs, err := readEpochs(args.epochFn)
	if err != nil {
		return fmt.Errorf("failed to read epoch file: %w", err)
	}
	m.PrintD(1, "--- %d epochs (%s) ---\n", len(epochs), filepath.Base(args.epochFn))

	// Prepare output files
	pos, err := openOutput(args.cfg.Output.PosFile)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer pos.Close()

	nmea, err := openNmeaOutput(&args.cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to prepare NMEA output: %w", err)
	}
	if nmea != nil {
		defer nmea.Close()
	}

	// Print header
	if !args.cfg.Output.NoHeader {
		printPosHeader(pos, os.Args[0], args, opt)
	}

	// Process epochs
	st := processEpochs(args, epochs, opt, pos, nmea)
	m.PrintD(1, "--- fix: %d / %d epochs ---\n", st.nFix, st.nEpoch)
	return nil
}

// Processing counters
type epochStat struct {
	nEpoch int
	nFix   int
}

// Process epochs. A failed epoch is logged and skipped.
func processEpochs(args cmdOpt, epochs []*m.Epoch, opt *m.LsOpt, pos, nmea io.Writer) epochStat {
	var st epochStat
	for _, e := range epochs {
		if !shouldProcessEpoch(e, args) {
			continue
		}
		st.nEpoch++
		e2 := e.Exclude(args.cfg.Solver.ExSats)
		m.PrintD(2, "\n>>> %s\n", e.Time.ToTime().UTC())
		m.PrintD(2, "\tsat: %d / %d\n", len(e2.Sats), len(e.Sats))
		sol, err := processSingleEpoch(args, e2, opt)
		if nmea != nil {
			for _, s := range m.NmeaFix(e.Time, e2.Sats, sol) {
				if _, werr := io.WriteString(nmea, s); werr != nil {
					m.PrintB(e.Time, "Error writing NMEA: %s\n", werr.Error())
				}
			}
		}
		if err != nil {
			m.PrintB(e.Time, "Error processing epoch: %s\n", err.Error())
			continue
		}
		st.nFix++
		printPos(pos, e.Time, sol, args.refPos)
	}
	return st
}

// Process single epoch
func processSingleEpoch(args cmdOpt, e *m.Epoch, opt *m.LsOpt) (*m.LsSol, error) {

	sol, err := m.SolveLsPos(e.SatPos, e.Pr, opt)
	if err != nil {
		return sol, fmt.Errorf("least squares failed: %w", err)
	}

	// Check if GDOP exceeds threshold
	if maxDop := args.cfg.Solver.MaxGdop; maxDop > 0 && sol.Dop.GDOP > maxDop {
		sol.Valid = false
		return sol, fmt.Errorf("GDOP exceeded threshold, GDOP=%.3f > %f", sol.Dop.GDOP, maxDop)
	}
	return sol, nil
}

// Filter epochs
func shouldProcessEpoch(e *m.Epoch, args cmdOpt) bool {

	// Skip epochs before processing start time
	if e.Time.Before(args.ts, true) {
		return false
	}

	// Stop after processing end time
	if !args.te.IsZero() && e.Time.After(args.te, true) {
		return false
	}

	// Skip epochs that are not divisible by the specified time interval
	if args.ti > 0 && !e.Time.Divisible(args.ti) {
		return false
	}

	return true
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Open output file. Empty name means stdout
func openOutput(fn string) (io.WriteCloser, error) {
	if len(fn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}
	return os.Create(fn)
}

// Open NMEA output (serial port or file). nil if not configured
func openNmeaOutput(o *m.OutputConfig) (io.WriteCloser, error) {
	if o.SerialPort != "" {
		mode := &serial.Mode{
			BaudRate: o.BaudRate,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(o.SerialPort, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port %s: %w", o.SerialPort, err)
		}
		m.PrintD(1, "Opened serial port: %s at %d baud\n", o.SerialPort, o.BaudRate)
		return port, nil
	}
	if o.NmeaFile != "" {
		return os.Create(o.NmeaFile)
	}
	return nil, nil
}

// Structure to hold command line argument information
type cmdOpt struct {
	epochFn string
	cfg     *m.Config
	ts, te  time.Time
	ti      int
	refPos  *m.PosXYZ
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options] epochs.txt

[Options]
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	def := m.DefaultConfig()
	var (
		cfgFn      string
		posFn      string
		noHeader   bool
		nmeaFn     string
		serialPort string
		baud       int
		noTrop     bool
		tropModel  string
		iter       int
		workers    int
		maxDop     float64
		exSats     m.SatVar
		dbg        int
		refLLH     m.PosLLH
		ts_, te_   m.TimeStr
	)
	flag.StringVar(&cfgFn, "c", "", "Configuration file (YAML). Command line options override its values.")
	flag.StringVar(&posFn, "o", "", "Output pos file path. If not specified, output to stdout.")
	flag.BoolVar(&noHeader, "nh", false, "Do not output header section of pos file.")
	flag.StringVar(&nmeaFn, "nmea", "", "Output NMEA (GGA, GSA, GSV) to this file.")
	flag.StringVar(&serialPort, "serial", "", "Serial port for NMEA output (e.g., /dev/ttyUSB0, COM1). Takes precedence over -nmea.")
	flag.IntVar(&baud, "baud", def.Output.BaudRate, "Serial port baud rate")
	flag.BoolVar(&noTrop, "ntr", false, "Do not perform tropospheric correction")
	flag.StringVar(&tropModel, "tm", def.Solver.TropModel, "Tropospheric model. goad or saastamoinen")
	flag.IntVar(&iter, "n", def.Solver.Iterations, "Number of least squares iterations")
	flag.IntVar(&workers, "j", def.Solver.Workers, "Number of goroutines to set up the equations of one iteration")
	flag.Float64Var(&maxDop, "d", def.Solver.MaxGdop, "Output no results when GDOP exceeds this value. Set to 0 to always output.")
	flag.Var(&exSats, "ex", "List of satellites to exclude. Comma-separated satellite names without spaces like G02,G14.")
	flag.TextVar(&ts_, "ts", m.NewTimeStr(time.Time{}), "Start epoch specification. Enclose in quotes like -ts \"2023/01/01 00:00:00\"")
	flag.TextVar(&te_, "te", m.NewTimeStr(time.Time{}), "End epoch specification. Enclose in quotes like -te \"2023/01/02 00:00:00\". This epoch is also included.")
	flag.IntVar(&a.ti, "ti", 0, "Calculation interval. Calculation is executed when the epoch's second value is divisible by the specified value. Omit or set to 0 to calculate all epochs.")
	flag.Var(&refLLH, "l", "Reference position latitude/longitude/ellipsoidal height to output ENU errors. Enclose in quotes like -l \"35.73101206 139.7396917 80.33\"")
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(display), 2(detailed display), 3(more detailed), 4(most detailed)")
	flag.Parse()

	if flag.NArg() != 1 {
		return a, fmt.Errorf("too less or many arguments")
	}
	a.epochFn = flag.Arg(0)

	a.cfg = def
	if cfgFn != "" {
		a.cfg, err = m.LoadConfig(cfgFn)
		if err != nil {
			return a, err
		}
	}

	// Options given on the command line override the config file
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["o"] {
		a.cfg.Output.PosFile = posFn
	}
	if set["nh"] {
		a.cfg.Output.NoHeader = noHeader
	}
	if set["nmea"] {
		a.cfg.Output.NmeaFile = nmeaFn
	}
	if set["serial"] {
		a.cfg.Output.SerialPort = serialPort
	}
	if set["baud"] {
		a.cfg.Output.BaudRate = baud
	}
	if set["ntr"] {
		a.cfg.Solver.UseTrop = !noTrop
	}
	if set["tm"] {
		a.cfg.Solver.TropModel = tropModel
	}
	if set["n"] {
		a.cfg.Solver.Iterations = iter
	}
	if set["j"] {
		a.cfg.Solver.Workers = workers
	}
	if set["d"] {
		a.cfg.Solver.MaxGdop = maxDop
	}
	if set["ex"] {
		a.cfg.Solver.ExSats = exSats
	}
	if set["x"] {
		a.cfg.Debug = dbg
	}
	if set["l"] {
		xyz := refLLH.ToXYZ()
		a.refPos = &xyz
	}
	if err = a.cfg.Validate(); err != nil {
		return a, err
	}
	a.ts = time.Time(ts_)
	a.te = time.Time(te_)
	m.DBG_ = a.cfg.Debug
	return
}

// Read epoch file
func readEpochs(fn string) ([]*m.Epoch, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.ReadEpochs(f)
}

// Print pos file header
func printPosHeader(pos io.Writer, cmd string, args cmdOpt, opt *m.LsOpt) {
	fmt.Fprintf(pos, "%% program   : %s\n", filepath.Base(cmd))
	fmt.Fprintf(pos, "%% inp file  : %s\n", args.epochFn)
	fmt.Fprintf(pos, "%% iterations: %d\n", opt.Iterations)
	if opt.UseTrop {
		fmt.Fprintf(pos, "%% trop model: %s\n", args.cfg.Solver.TropModel)
	} else {
		fmt.Fprintf(pos, "%% trop model: off\n")
	}
	if args.refPos != nil {
		llh := args.refPos.ToLLH()
		fmt.Fprintf(pos, "%% ref pos   : %.8f %.8f %.3f\n", m.ToDeg(llh.Lat), m.ToDeg(llh.Lon), llh.Hei)
		fmt.Fprintf(pos, "%%  GPST                    latitude(deg) longitude(deg)  height(m)   Q  ns       clk_bias(m)       gdop       pdop       hdop       vdop       tdop      de(m)      dn(m)      du(m)\n")
	} else {
		fmt.Fprintf(pos, "%%  GPST                    latitude(deg) longitude(deg)  height(m)   Q  ns       clk_bias(m)       gdop       pdop       hdop       vdop       tdop\n")
	}
}

// Output POS file line
func printPos(pos io.Writer, t m.GTime, sol *m.LsSol, refPos *m.PosXYZ) {
	const Q = 5 // Single point positioning
	llh := sol.Pos.ToLLH()
	ts := t.ToTime().UTC().Format("2006/01/02 15:04:05.000")
	d := sol.Dop
	fmt.Fprintf(pos, "%s %13.9f %14.9f %10.4f %3d %3d %17.4f %10.3f %10.3f %10.3f %10.3f %10.3f", ts, m.ToDeg(llh.Lat), m.ToDeg(llh.Lon), llh.Hei, Q, len(sol.Elev), sol.Clk, d.GDOP, d.PDOP, d.HDOP, d.VDOP, d.TDOP)
	if refPos != nil {
		enu := sol.Pos.ToENU(*refPos)
		fmt.Fprintf(pos, " %10.4f %10.4f %10.4f", enu.E, enu.N, enu.U)
	}
	fmt.Fprintln(pos)
}
