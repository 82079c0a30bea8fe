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
package tools

type mockLine struct {
	Line []byte
	Err  error
}

// mockProcess stands in for the pinentry binary, replaying Lines in order
type mockProcess struct {
	Status   bool
	CloseErr error
	StartErr error
	WriteErr error
	Lines    []mockLine
}

func newMockProcess(lines ...string) *mockProcess {
	p := &mockProcess{Status: true}
	for _, l := range lines {
		p.Lines = append(p.Lines, mockLine{Line: []byte(l)})
	}
	return p
}

func (m *mockProcess) ReadLine() ([]byte, bool, error) {
	line := m.Lines[0]
	m.Lines = m.Lines[1:]
	return line.Line, m.Status, line.Err
}

func (m *mockProcess) Start(string, []string) error {
	return m.StartErr
}

func (m *mockProcess) Close() error {
	return m.CloseErr
}

func (m *mockProcess) Write(b []byte) (int, error) {
	return len(b), m.WriteErr
}
