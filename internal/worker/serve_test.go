package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/convert"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/mocks"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
)

func decodeResponses(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	dec := json.NewDecoder(out)
	var resps []Response
	for dec.More() {
		var resp Response
		require.NoError(t, dec.Decode(&resp))
		resps = append(resps, resp)
	}
	return resps
}

func TestServeAnswersEachTask(t *testing.T) {
	in := strings.NewReader(
		`{"inputPath":"/in/a.heic","outputPath":"/out/a.jpeg"}` + "\n" +
			`{"inputPath":"/in/b.heic","outputPath":"/out/b.jpeg"}` + "\n" +
			`{"exit":true}` + "\n")
	var out bytes.Buffer
	exec := &fakeExec{bytes: 512}

	require.NoError(t, Serve(context.Background(), in, &out, exec, mocks.NoopLogger{}))

	resps := decodeResponses(t, &out)
	require.Len(t, resps, 3)

	assert.True(t, resps[0].OK)
	assert.Equal(t, "/out/a.jpeg", resps[0].OutputPath)
	assert.Equal(t, int64(512), resps[0].Bytes)
	assert.True(t, resps[1].OK)
	assert.Equal(t, "/out/b.jpeg", resps[1].OutputPath)

	assert.True(t, resps[2].Exited)
	assert.False(t, resps[2].OK)
}

func TestServeContinuesAfterTaskFailure(t *testing.T) {
	in := strings.NewReader(
		`{"inputPath":"/in/bad.heic","outputPath":"/out/bad.jpeg"}` + "\n" +
			`{"exit":true}` + "\n")
	var out bytes.Buffer
	exec := &fakeExec{err: errors.New("truncated file")}

	require.NoError(t, Serve(context.Background(), in, &out, exec, mocks.NoopLogger{}))

	resps := decodeResponses(t, &out)
	require.Len(t, resps, 2)

	assert.False(t, resps[0].OK)
	assert.Equal(t, task.CodeConversion, resps[0].Code)
	assert.Equal(t, "truncated file", resps[0].Error)
	assert.True(t, resps[1].Exited)
}

func TestServeTreatsEOFAsShutdown(t *testing.T) {
	in := strings.NewReader(`{"inputPath":"/in/a.heic","outputPath":"/out/a.jpeg"}` + "\n")
	var out bytes.Buffer
	exec := &fakeExec{bytes: 1}

	require.NoError(t, Serve(context.Background(), in, &out, exec, mocks.NoopLogger{}))

	resps := decodeResponses(t, &out)
	require.Len(t, resps, 1)
	assert.True(t, resps[0].OK)
}

func TestServeRejectsMalformedInput(t *testing.T) {
	in := strings.NewReader("not json\n")
	var out bytes.Buffer

	err := Serve(context.Background(), in, &out, &fakeExec{}, mocks.NoopLogger{})
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{&convert.StageError{Stage: convert.StageRead, Err: errors.New("no such file")}, task.CodeRead},
		{&convert.StageError{Stage: convert.StageWrite, Err: errors.New("disk full")}, task.CodeWrite},
		{&convert.StageError{Stage: convert.StageConvert, Err: errors.New("bad image")}, task.CodeConversion},
		{errors.New("anything else"), task.CodeConversion},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, Classify(tc.err))
	}
}
