// MIT License
//
// Copyright (c) 2024 sphinx-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cli

// Config holds the flags shared by every command.
type Config struct {
	configFile string
	params     string
	logLevel   string
	dataDir    string
}

// verifyConfig holds the flags of the verify command.
type verifyConfig struct {
	message       string
	messageText   string
	messageFile   string
	signature     string
	signatureFile string
	publicKey     string
	remote        string
	forsWorkers   int
}

// batchConfig holds the flags of the batch command.
type batchConfig struct {
	file    string
	out     string
	workers int
}

// ParamsInfoJSON describes one parameter set for the params command.
type ParamsInfoJSON struct {
	Name          string `json:"name"`
	N             int    `json:"n"`
	K             int    `json:"k"`
	A             int    `json:"a"`
	D             int    `json:"d"`
	HPrime        int    `json:"hprime"`
	Hash          string `json:"hash"`
	PublicKeySize int    `json:"publicKeySize"`
	SignatureSize int    `json:"signatureSize"`
}

// VerifyOutputJSON is printed by the verify command.
type VerifyOutputJSON struct {
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
	Params     string `json:"params"`
	HashCalls  uint64 `json:"hashCalls,omitempty"`
	Elapsed    string `json:"elapsed,omitempty"`
	RemoteAddr string `json:"remote,omitempty"`
}

// InspectOutputJSON is printed by the inspect command.
type InspectOutputJSON struct {
	Params      string   `json:"params"`
	Randomizer  string   `json:"randomizer"`
	Digest      string   `json:"digest,omitempty"`
	ForsIndices []uint32 `json:"forsIndices,omitempty"`
	TreeIndex   uint64   `json:"treeIndex"`
	LeafIndex   uint32   `json:"leafIndex"`
	ForsTrees   int      `json:"forsTrees"`
	Layers      int      `json:"layers"`
	Bytes       int      `json:"bytes"`
}
