/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes levelled, colour prefixed messages.
//
// Info and debug go to Out, warnings and errors to Err. Quiet suppresses
// everything except errors.
type Logger struct {
	Debug bool
	Quiet bool

	Out io.Writer
	Err io.Writer
}

func New(debug, quiet bool) Logger {
	return Logger{
		Debug: debug,
		Quiet: quiet,
		Out:   os.Stdout,
		Err:   os.Stderr,
	}
}

func (l Logger) Infof(msg string, args ...any) {
	if !l.Quiet {
		l.write(l.Out, color.GreenString("[info] "), msg, args...)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug && !l.Quiet {
		l.write(l.Out, color.CyanString("[debug] "), msg, args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	if !l.Quiet {
		l.write(l.Err, color.YellowString("[warn] "), msg, args...)
	}
}

func (l Logger) Errorf(msg string, args ...any) {
	l.write(l.Err, color.RedString("[error] "), msg, args...)
}

func (l Logger) write(w io.Writer, prefix, msg string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, prefix+msg+"\n", args...)
}
