package audio

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kleinpress/internal/compression"
)

func offlineHost() *Host {
	return NewHost("/nonexistent/ffmpeg", "/nonexistent/ffprobe")
}

func TestTranscode_EncodesInFixedBlocks(t *testing.T) {
	enc := &fakeEncoder{}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "tone.wav", MediaType: "audio/wav", Data: sineWAV(t, 44100, 2, 1)}

	res, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelMedium))
	require.NoError(t, err)

	// 1s at 44100 resampled to 22050 mono
	require.NotEmpty(t, enc.blocks)
	total := 0
	for i, n := range enc.blocks {
		if i < len(enc.blocks)-1 {
			assert.Equal(t, BlockSize, n, "block %d", i)
		}
		total += n
	}
	assert.Equal(t, 22050, total)
	assert.Equal(t, 22050, enc.opts.SampleRate)
	assert.Equal(t, 128, enc.opts.BitrateKbps)
	assert.True(t, enc.flushed)
	assert.True(t, enc.closed)

	// first block produced nothing and is not part of the output
	assert.Equal(t, len(enc.blocks)-1+2, len(res.Data))
	assert.Equal(t, ".mp3", res.Extension)
	assert.Equal(t, file.Size(), res.OriginalSize)
}

func TestTranscode_NeverRaisesSampleRate(t *testing.T) {
	enc := &fakeEncoder{}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "voice.wav", Data: sineWAV(t, 16000, 1, 0.5)}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelLow))
	require.NoError(t, err)

	assert.Equal(t, 16000, enc.opts.SampleRate)
}

func TestTranscode_NoData(t *testing.T) {
	enc := &fakeEncoder{silent: true}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "tone.wav", Data: sineWAV(t, 8000, 1, 0.5)}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelHigh))

	assert.ErrorIs(t, err, compression.ErrEncodingProducedNoData)
	assert.True(t, enc.closed)
}

func TestTranscode_EmptyAudio(t *testing.T) {
	enc := &fakeEncoder{}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "silence.wav", Data: wavBytes(t, 8000, 1, 16, nil)}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelHigh))

	assert.ErrorIs(t, err, compression.ErrEmptyAudio)
	assert.Empty(t, enc.blocks)
}

func TestTranscode_UnsupportedCodec(t *testing.T) {
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(&fakeEncoder{})))
	file := compression.InputFile{Name: "memo.amr", MediaType: "audio/amr", Data: []byte("#!AMR\n not really")}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelMedium))

	require.ErrorIs(t, err, compression.ErrUnsupportedCodec)
	assert.Contains(t, err.Error(), "audio/amr")
	assert.Contains(t, err.Error(), "MP3 or WAV")
}

func TestTranscode_Canceled(t *testing.T) {
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(&fakeEncoder{})))
	file := compression.InputFile{Name: "tone.wav", Data: sineWAV(t, 8000, 1, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Transcode(ctx, file, compression.AudioConfigFor(compression.LevelMedium))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranscode_RejectsRatesBelowMP3Minimum(t *testing.T) {
	enc := &fakeEncoder{}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "phone.wav", MediaType: "audio/wav", Data: sineWAV(t, 6000, 1, 0.5)}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelHigh))

	require.ErrorIs(t, err, compression.ErrUnsupportedCodec)
	assert.Contains(t, err.Error(), "6000 Hz")
	assert.Empty(t, enc.blocks)
}

func TestTranscode_NonStandardRateStepsDown(t *testing.T) {
	enc := &fakeEncoder{}
	tr := NewTranscoder(testLogger(), offlineHost(), WithEncoderFactory(fakeFactory(enc)))
	file := compression.InputFile{Name: "cd-rom.wav", Data: sineWAV(t, 37800, 1, 0.5)}

	_, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelLow))
	require.NoError(t, err)

	assert.Equal(t, 32000, enc.opts.SampleRate)
	total := 0
	for _, n := range enc.blocks {
		total += n
	}
	assert.InDelta(t, 16000, total, 1)
}

// mp3FrameHeader returns the first four header bytes of the first frame.
func mp3FrameHeader(t *testing.T, data []byte) []byte {
	t.Helper()
	for i := 0; i+4 <= len(data); i++ {
		if data[i] == 0xFF && data[i+1]&0xE0 == 0xE0 {
			return data[i : i+4]
		}
	}
	t.Fatal("no mp3 frame header found")
	return nil
}

func TestTranscode_BuiltinEncoderRoundTrip(t *testing.T) {
	tr := NewTranscoder(testLogger(), offlineHost())
	file := compression.InputFile{Name: "tone.wav", MediaType: "audio/wav", Data: sineWAV(t, 44100, 2, 2)}

	res, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelMedium))
	require.NoError(t, err)
	require.NotEmpty(t, res.Data)
	assert.Less(t, res.Size(), file.Size())

	header := mp3FrameHeader(t, res.Data)
	assert.Equal(t, byte(3), header[3]>>6, "channel mode should be mono")

	dec, err := gomp3.NewDecoder(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.LessOrEqual(t, dec.SampleRate(), 22050)

	// go-mp3 always emits 16-bit stereo
	pcm, err := io.ReadAll(dec)
	require.NoError(t, err)
	duration := float64(len(pcm)/4) / float64(dec.SampleRate())
	assert.InDelta(t, 2.0, duration, 0.1)
}

func TestNewMP3Encoder_RejectsNonMP3Rates(t *testing.T) {
	_, err := NewMP3Encoder(context.Background(), EncoderOptions{SampleRate: 37800})
	assert.Error(t, err)

	enc, err := NewMP3Encoder(context.Background(), EncoderOptions{SampleRate: 16000})
	require.NoError(t, err)
	out, err := enc.EncodeBlock(make([]int16, BlockSize))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	_, err = enc.Flush()
	require.NoError(t, err)
	_, err = enc.EncodeBlock(make([]int16, BlockSize))
	assert.Error(t, err)
	assert.NoError(t, enc.Close())
}

func TestEncoderByName(t *testing.T) {
	host := offlineHost()
	for _, name := range []string{"", EncoderBuiltin, EncoderFFmpeg} {
		factory, err := EncoderByName(name, host)
		require.NoError(t, err, name)
		assert.NotNil(t, factory, name)
	}

	factory, err := EncoderByName(EncoderFFmpeg, host)
	require.NoError(t, err)
	_, err = factory(context.Background(), EncoderOptions{SampleRate: 22050})
	assert.ErrorIs(t, err, ErrHostCodecUnavailable)

	_, err = EncoderByName("lame", host)
	assert.Error(t, err)
}

func requireFFmpeg(t *testing.T) *Host {
	t.Helper()
	host := NewHost("", "")
	if !host.Available() {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath(host.FFprobePath); err != nil {
		t.Skip("ffprobe not installed")
	}
	out, err := exec.Command(host.FFmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil || !strings.Contains(string(out), "libmp3lame") {
		t.Skip("ffmpeg built without libmp3lame")
	}
	return host
}

func TestTranscode_FFmpegEncoderRoundTrip(t *testing.T) {
	host := requireFFmpeg(t)
	tr := NewTranscoder(testLogger(), host, WithEncoderFactory(host.NewEncoder))
	file := compression.InputFile{Name: "tone.wav", MediaType: "audio/wav", Data: sineWAV(t, 44100, 2, 2)}

	res, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelMedium))
	require.NoError(t, err)
	require.NotEmpty(t, res.Data)
	assert.Less(t, res.Size(), file.Size())

	path := t.TempDir() + "/out.mp3"
	require.NoError(t, writeTestFile(path, res.Data))
	info, err := host.Probe(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "mp3", info.CodecName)
	assert.Equal(t, 1, info.Channels)
	assert.LessOrEqual(t, info.SampleRate, 22050)
	assert.InDelta(t, 2.0, info.Duration, 0.1)
}

func TestHostDecodeFallback(t *testing.T) {
	host := requireFFmpeg(t)
	tr := NewTranscoder(testLogger(), host)
	file := compression.InputFile{Name: "tone.wav", Data: sineWAV(t, 22050, 1, 1)}

	first, err := tr.Transcode(context.Background(), file, compression.AudioConfigFor(compression.LevelHigh))
	require.NoError(t, err)

	buf, err := host.DecodePCM(context.Background(), first.Data)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Channels)
	assert.Equal(t, 16000, buf.SampleRate)
	assert.InDelta(t, 1.0, buf.Duration(), 0.2)
}

func TestHostCheck(t *testing.T) {
	statuses := offlineHost().Check()

	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Available)
		assert.Contains(t, s.Detail, "not found")
	}
	assert.True(t, statuses[0].Optional)
	assert.True(t, statuses[1].Optional)
}

func writeTestFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
