// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

func sampleArticles() []types.Article {
	return []types.Article{
		{
			Title:     "Senolytics <in vivo> & ex vivo",
			Journal:   "Nature aging",
			Abstract:  "Senescent cells accumulate. Clearance improved healthspan.",
			Link:      "https://doi.org/10.1038/s43587-024-0001-x",
			Analysis:  "* Mechanism: BCL-xL inhibition\n* **Phase 2 human trial** reduced p16\n* Effect size modest",
			FetchedAt: "2026-03-14 09:26",
		},
		{
			Title:     "Über die Zellalterung: β-galactosidase",
			Journal:   types.DefaultJournal,
			Abstract:  "",
			Link:      "",
			Analysis:  "- a\n- b\n- c\n",
			FetchedAt: "2026-03-14 09:27",
		},
		{
			Title:     types.DefaultTitle,
			Journal:   "Aging cell",
			Abstract:  "Only one fragment.",
			FetchedAt: "2026-03-14 09:27",
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"results.json", "results.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleArticles()

			n, err := Write(context.Background(), FileSink{Path: path}, FormatFromPath(path), want)
			require.NoError(t, err)
			assert.Equal(t, len(want), n)

			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEncodeJSONShape(t *testing.T) {
	data, err := Encode(FormatJSON, sampleArticles()[2:])
	require.NoError(t, err)

	want := `[
    {
        "title": "No Title",
        "journal": "Aging cell",
        "abstract": "Only one fragment.",
        "link": "",
        "fetched_at": "2026-03-14 09:27"
    }
]
`
	assert.Equal(t, want, string(data))
}

func TestEncodeJSONLeavesHTMLUnescaped(t *testing.T) {
	data, err := Encode(FormatJSON, sampleArticles()[:1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "<in vivo> & ex vivo")
}

func TestEncodeNilIsEmptyList(t *testing.T) {
	data, err := Encode(FormatJSON, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestEncodePMIDNotSerialized(t *testing.T) {
	data, err := Encode(FormatJSON, []types.Article{{PMID: "39000001", Title: "t"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "39000001")
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := Encode("csv", nil)
	assert.ErrorContains(t, err, "unsupported snapshot format")
	_, err = Decode("csv", nil)
	assert.ErrorContains(t, err, "unsupported snapshot format")
}

func TestFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.json")
	sink := FileSink{Path: path}

	_, err := Write(context.Background(), sink, FormatJSON, sampleArticles())
	require.NoError(t, err)
	_, err = Write(context.Background(), sink, FormatJSON, sampleArticles()[:1])
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWriteError(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(context.Background(), FileSink{Path: dir}, FormatJSON, sampleArticles())
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, dir, we.Dest)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading snapshot")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Read(path)
	assert.ErrorContains(t, err, "parsing JSON snapshot")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("out/latest.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("latest.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("results.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("results"))
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sink(t *testing.T) {
	fp := &fakePutter{}
	sink := S3Sink{Client: fp, Bucket: "digests", Key: "pubmed/latest.json"}

	n, err := Write(context.Background(), sink, FormatJSON, sampleArticles())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NotNil(t, fp.in)
	assert.Equal(t, "digests", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "pubmed/latest.json", aws.ToString(fp.in.Key))
	assert.Equal(t, "application/json", aws.ToString(fp.in.ContentType))
	assert.Equal(t, int64(len(fp.body)), aws.ToInt64(fp.in.ContentLength))

	got, err := Decode(FormatJSON, fp.body)
	require.NoError(t, err)
	assert.Equal(t, sampleArticles(), got)
	assert.Equal(t, "s3://digests/pubmed/latest.json", sink.String())
}

func TestS3SinkError(t *testing.T) {
	sink := S3Sink{Client: &fakePutter{err: errors.New("access denied")}, Bucket: "b", Key: "k"}
	_, err := Write(context.Background(), sink, FormatYAML, sampleArticles())

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "s3://b/k", we.Dest)
	assert.Contains(t, err.Error(), "access denied")
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://bucket/key.json", "bucket", "key.json", true},
		{"s3://bucket/deep/key.yaml", "bucket", "deep/key.yaml", true},
		{"s3://bucket", "", "", false},
		{"s3://bucket/", "", "", false},
		{"s3:///key", "", "", false},
		{"results.json", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, ok := ParseS3URL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNewSinkLocalAndInvalid(t *testing.T) {
	sink, err := NewSink(context.Background(), types.OutputConfig{Path: "results.json"})
	require.NoError(t, err)
	assert.Equal(t, FileSink{Path: "results.json"}, sink)

	_, err = NewSink(context.Background(), types.OutputConfig{Path: "s3://only-bucket"})
	assert.ErrorContains(t, err, "invalid S3 destination")
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleArticles(), &buf)
	out := buf.String()

	assert.Contains(t, out, "Senolytics")
	assert.Contains(t, out, "https://doi.org/10.1038/s43587-024-0001-x")
	assert.Contains(t, out, "3 articles")
	assert.Equal(t, 7, strings.Count(out, "\n"))

	buf.Reset()
	FormatTable(nil, &buf)
	assert.Equal(t, "No articles.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ββββββ...", truncate(strings.Repeat("β", 20), 9))
}
