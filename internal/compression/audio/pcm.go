package audio

import "math"

// BlockSize is the number of mono samples handed to the encoder per call.
const BlockSize = 1152

// Buffer holds decoded audio as interleaved float samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the length of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Downmix averages all channels into a single mono channel.
func Downmix(b *Buffer) *Buffer {
	if b.Channels <= 1 {
		return &Buffer{SampleRate: b.SampleRate, Channels: 1, Samples: b.Samples}
	}

	frames := b.Frames()
	out := make([]float32, frames)
	scale := 1 / float32(b.Channels)
	for i := 0; i < frames; i++ {
		var sum float32
		frame := b.Samples[i*b.Channels : (i+1)*b.Channels]
		for _, s := range frame {
			sum += s
		}
		out[i] = sum * scale
	}
	return &Buffer{SampleRate: b.SampleRate, Channels: 1, Samples: out}
}

// Resample converts a mono buffer to targetRate with linear interpolation.
// It never raises the sample rate.
func Resample(b *Buffer, targetRate int) *Buffer {
	if targetRate <= 0 || targetRate >= b.SampleRate || len(b.Samples) == 0 {
		return b
	}

	ratio := float64(b.SampleRate) / float64(targetRate)
	n := int(math.Floor(float64(len(b.Samples)) / ratio))
	out := make([]float32, n)
	last := len(b.Samples) - 1
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = b.Samples[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = b.Samples[idx]*(1-frac) + b.Samples[idx+1]*frac
	}
	return &Buffer{SampleRate: targetRate, Channels: 1, Samples: out}
}

// FloatToInt16 converts samples to signed 16-bit integers. Values are clamped
// to [-1, 1]; negatives scale by 32768 and the rest by 32767.
func FloatToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s != s { // NaN
			continue
		}
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		if s < 0 {
			out[i] = int16(math.Round(float64(s) * 32768))
		} else {
			out[i] = int16(math.Round(float64(s) * 32767))
		}
	}
	return out
}

// mp3Rates are the sample rates MPEG-1, MPEG-2 and MPEG-2.5 layer III accept.
var mp3Rates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

// MinSampleRate is the lowest rate layer III can carry.
const MinSampleRate = 8000

// SnapSampleRate returns the highest MP3 sample rate that does not exceed
// rate, or 0 when rate is below MinSampleRate.
func SnapSampleRate(rate int) int {
	snapped := 0
	for _, r := range mp3Rates {
		if r <= rate {
			snapped = r
		}
	}
	return snapped
}

// ClampBitrate limits kbps to what layer III allows at sampleRate.
// MPEG-2 and 2.5 rates top out at 160 kbps.
func ClampBitrate(kbps, sampleRate int) int {
	if kbps <= 0 {
		kbps = 128
	}
	if sampleRate < 32000 && kbps > 160 {
		return 160
	}
	if kbps > 320 {
		return 320
	}
	if kbps < 8 {
		return 8
	}
	return kbps
}
