// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sqr decodes keyed QR codes from image files.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"

	"github.com/unixdj/secqr"
)

var g = struct {
	key     secqr.Key // unmasking key
	input   string    // input type
	format  int       // output format
	dump    bool      // print matrix
	verbose bool      // log retries
	decoder secqr.Decoder
}{}

var (
	inputs  = []string{"auto", "text"}
	formats = []string{"plain", "info", "json"}
)

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	fmt.Fprint(w, "Keyed QR code reader\nUsage: ", cl.Program(), " ",
		cl.UsageLine(), ` [file ...]
Each file, or standard input if none is given, holds an image in PNG,
JPEG, GIF, BMP, TIFF, WebP or PBM format containing nothing but an
upright code, or with -i text a drawing of the code, one character per
module.  The key is taken from -k or -x, or else from the SECQR_KEY or
SECQR_KEY_HEX environment variables.

`)
	cl.PrintOptions(w)
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`sqr version 0.1.0
Copyright (c) 2025 Vadim Vygonets`)
	os.Exit(0)
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	ks := getopt.String('k', "", "key as a string of up to 32 bytes",
		"key")
	kx := getopt.String('x', "", "key as 64 hex digits; overrides -k",
		"hex")
	in := getopt.Enum('i', inputs, "auto", `input type: "auto" `+
		`for an image, "text" for a drawing using "#" and "."`, "type")
	ff := getopt.Enum('t', formats, "", `output format, one of: `+
		strings.Join(formats, ", ")+`; "info" adds metadata, `+
		`"json" prints the whole result; `+
		`if standard output is a TTY, default is info, otherwise plain`,
		"type")
	getopt.Flag(&g.dump, 'd', "print the module matrix read")
	getopt.Flag(&g.verbose, 'v', "log mirrored reading attempts")

	getopt.Parse()
	switch {
	case *kx != "":
		k, err := secqr.ParseKeyHex(*kx)
		if err != nil {
			log.Fatalln("-x:", err)
		}
		g.key = k
	case getopt.IsSet('k'):
		g.key = secqr.KeyFromString(*ks)
	case os.Getenv("SECQR_KEY_HEX") != "":
		k, err := secqr.ParseKeyHex(os.Getenv("SECQR_KEY_HEX"))
		if err != nil {
			log.Fatalln("SECQR_KEY_HEX:", err)
		}
		g.key = k
	default:
		s, ok := os.LookupEnv("SECQR_KEY")
		if !ok {
			fmt.Fprintln(os.Stderr, "no key given")
			usage()
		}
		g.key = secqr.KeyFromString(s)
	}
	g.input = *in
	if *ff == "" {
		if isatty.IsTerminal(uintptr(syscall.Stdout)) {
			*ff = "info"
		} else {
			*ff = "plain"
		}
	}
	for i, v := range formats {
		if *ff == v {
			g.format = i
			break
		}
	}
	if g.verbose {
		l := logrus.New()
		l.SetLevel(logrus.DebugLevel)
		l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
		g.decoder.Log = l
	}
}

func readMatrix(r io.Reader) (*secqr.BitMatrix, error) {
	if g.input == "text" {
		var b strings.Builder
		if _, err := io.Copy(&b, r); err != nil {
			return nil, err
		}
		return secqr.ParseText(b.String())
	}
	return secqr.DecodeImage(r)
}

func printResult(w io.Writer, res *secqr.Result) error {
	switch formats[g.format] {
	case "plain":
		_, err := fmt.Fprintln(w, res.Text)
		return err
	case "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "\t")
		return e.Encode(res)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "version %v-%v, mask %v, %s",
		res.Version, res.Level, res.Mask, res.SymbologyIdentifier)
	if res.Mirrored {
		b.WriteString(", mirrored")
	}
	if res.ErrorsCorrected != 0 {
		fmt.Fprintf(&b, ", %d codewords corrected", res.ErrorsCorrected)
	}
	if res.ECI >= 0 {
		fmt.Fprintf(&b, ", ECI %d", res.ECI)
	}
	if res.ApplicationIndicator >= 0 {
		fmt.Fprintf(&b, ", AI %d", res.ApplicationIndicator)
	}
	if sa := res.StructuredAppend; sa != nil {
		fmt.Fprintf(&b, ", symbol %d of %d, parity %#02x",
			sa.Index()+1, sa.Total(), sa.Parity)
	}
	fmt.Fprintf(&b, "\n%s\n", res.Text)
	_, err := w.Write(b.Bytes())
	return err
}

func decode(name string, r io.Reader) error {
	m, err := readMatrix(r)
	if err != nil {
		return err
	}
	if g.dump {
		fmt.Print(m)
	}
	res, err := g.decoder.Decode(m, &g.key)
	if err != nil {
		return err
	}
	if name != "" && formats[g.format] == "info" {
		fmt.Printf("%s: ", name)
	}
	return printResult(os.Stdout, res)
}

func main() {
	log.SetFlags(0)
	parseFlags()

	args := getopt.Args()
	if len(args) == 0 {
		if err := decode("", os.Stdin); err != nil {
			log.Fatalln(err)
		}
		return
	}
	status := 0
	for _, fn := range args {
		err := func() error {
			f, err := os.Open(fn)
			if err != nil {
				return err
			}
			defer f.Close()
			return decode(fn, f)
		}()
		if err != nil {
			var ce secqr.ChecksumError
			if errors.As(err, &ce) {
				err = fmt.Errorf("%w (wrong key?)", err)
			}
			log.Println(fn+":", err)
			status = 1
		}
	}
	os.Exit(status)
}
