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

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sphinx-core/spxverify/src/common"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/receipt"
	"github.com/sphinx-core/spxverify/src/core/sphincs/sphincstest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhttp "github.com/sphinx-core/spxverify/src/http"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func signed(t *testing.T, preset, msg string) (string, string) {
	t.Helper()
	p, err := params.Lookup(preset)
	require.NoError(t, err)
	sig, pk, err := sphincstest.MustNew(p, []byte("cli")).Sign([]byte(msg))
	require.NoError(t, err)
	return common.Bytes2Hex(types.MarshalSignature(sig)), common.Bytes2Hex(types.MarshalPublicKey(pk))
}

func TestParamsCommand(t *testing.T) {
	out, err := run(t, "params", "--json")
	require.NoError(t, err)

	var infos []ParamsInfoJSON
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, len(params.Presets()))
	for _, info := range infos {
		p, err := params.Lookup(info.Name)
		require.NoError(t, err)
		require.Equal(t, p.SignatureSize(), info.SignatureSize)
	}

	out, err = run(t, "params")
	require.NoError(t, err)
	require.Contains(t, out, "shake-256s")
}

func TestVerifyCommand(t *testing.T) {
	sig, pk := signed(t, "small", "hello cli")

	out, err := run(t, "verify", "--params", "small", "--message-text", "hello cli", "--signature", sig, "--public-key", pk)
	require.NoError(t, err)
	var res VerifyOutputJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.True(t, res.Valid)
	require.NotZero(t, res.HashCalls)
	require.Equal(t, "small", res.Params)

	msgFile := filepath.Join(t.TempDir(), "msg")
	require.NoError(t, os.WriteFile(msgFile, []byte("hello cli"), 0644))
	_, err = run(t, "verify", "--params", "small", "--message-file", msgFile, "--signature", sig, "--public-key", pk, "--fors-workers", "4")
	require.NoError(t, err)
}

func TestVerifyCommandRejects(t *testing.T) {
	sig, pk := signed(t, "small", "hello cli")

	out, err := run(t, "verify", "--params", "small", "--message-text", "hello cla", "--signature", sig, "--public-key", pk)
	require.ErrorIs(t, err, errInvalidSignature)
	require.Equal(t, 1, ExitCode(err))
	require.Contains(t, out, `"valid": false`)

	_, err = run(t, "verify", "--params", "small", "--message-text", "x", "--signature", sig[:10], "--public-key", pk)
	require.Error(t, err)
	require.Equal(t, 2, ExitCode(err))

	_, err = run(t, "verify", "--params", "nope", "--signature", sig, "--public-key", pk)
	require.Error(t, err)

	_, err = run(t, "verify", "--params", "small", "--message", "00", "--message-text", "x", "--signature", sig, "--public-key", pk)
	require.Error(t, err)
}

func TestBatchCommandWithReceipts(t *testing.T) {
	dir := t.TempDir()
	var req spxhttp.BatchRequest
	for _, msg := range []string{"a", "b", "c"} {
		sig, pk := signed(t, "toy", msg)
		req.Items = append(req.Items, spxhttp.VerifyRequest{
			ID:        msg,
			Message:   common.Bytes2Hex([]byte(msg)),
			Signature: sig,
			PublicKey: pk,
		})
	}
	req.Items[2].Signature = "00"

	file := filepath.Join(dir, "items.json")
	require.NoError(t, common.WriteJSONToFile(req.Items, file))
	outFile := filepath.Join(dir, "out", "results.json")

	_, err := run(t, "batch", "--file", file, "--datadir", filepath.Join(dir, "data"), "--out", outFile, "--workers", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var resp spxhttp.BatchResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Results, 3)
	require.Equal(t, 2, resp.Valid)
	require.NotEmpty(t, resp.Results[2].Error)

	store, err := receipt.Open(common.GetReceiptDBPath(filepath.Join(dir, "data")))
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestInspectCommand(t *testing.T) {
	sig, pk := signed(t, "small", "inspect")

	out, err := run(t, "inspect", "--params", "small", "--signature", sig)
	require.NoError(t, err)
	var res InspectOutputJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 4, res.ForsTrees)
	require.Equal(t, 2, res.Layers)
	require.Empty(t, res.Digest)

	out, err = run(t, "inspect", "--params", "small", "--signature", sig, "--public-key", pk, "--message-text", "inspect")
	require.NoError(t, err)
	res = InspectOutputJSON{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.ForsIndices, 4)
	require.Len(t, res.Digest, 8)
	require.Less(t, res.TreeIndex, uint64(8))
	require.Less(t, res.LeafIndex, uint32(8))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"params": "small", "logLevel": "warn"}`), 0644))
	sig, pk := signed(t, "small", "from config")

	_, err := run(t, "verify", "--config", path, "--message-text", "from config", "--signature", sig, "--public-key", pk)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"logLevel": "shout"}`), 0644))
	_, err = run(t, "verify", "--config", path, "--message-text", "x", "--signature", sig, "--public-key", pk)
	require.Error(t, err)
}
