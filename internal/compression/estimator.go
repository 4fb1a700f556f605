package compression

import "math"

const (
	bytesPerMB = 1024 * 1024

	// referenceAudioBitrateKbps is the assumed bitrate of a high-quality source.
	referenceAudioBitrateKbps = 256

	maxReductionPercent = 95
)

// SizeEstimate predicts the outcome of compressing one or more files.
type SizeEstimate struct {
	OriginalBytes    int64   `json:"original_bytes"`
	EstimatedBytes   int64   `json:"estimated_bytes"`
	ReductionPercent float64 `json:"reduction_percent"`
}

type reductionBounds struct {
	min, perMB, max float64
}

var imageReduction = [levelCount]reductionBounds{
	LevelLow:    {min: 10, perMB: 5, max: 30},
	LevelMedium: {min: 30, perMB: 10, max: 60},
	LevelHigh:   {min: 50, perMB: 15, max: 85},
}

// Estimate predicts output size for a file of size bytes. It never fails and
// holds no state; zero or negative sizes estimate no reduction.
func Estimate(size int64, level Level, pipeline Pipeline) SizeEstimate {
	if size <= 0 {
		return SizeEstimate{OriginalBytes: max(size, 0), EstimatedBytes: max(size, 0)}
	}
	if !level.Valid() {
		level = LevelMedium
	}

	var percent float64
	switch pipeline {
	case PipelineImage, PipelineWebP:
		b := imageReduction[level]
		sizeMB := float64(size) / bytesPerMB
		percent = clamp(b.perMB*sizeMB, b.min, b.max)
	case PipelineAudio:
		target := float64(AudioConfigFor(level).BitrateKbps)
		percent = clamp(math.Round((1-target/referenceAudioBitrateKbps)*100), 20, 90)
	default:
		// pdf files are bundled, never recompressed
		percent = 0
	}

	percent = clamp(percent, 0, maxReductionPercent)
	return SizeEstimate{
		OriginalBytes:    size,
		EstimatedBytes:   int64(math.Round(float64(size) * (1 - percent/100))),
		ReductionPercent: percent,
	}
}

// EstimateFile is Estimate over the file's byte length.
func EstimateFile(file InputFile, level Level, pipeline Pipeline) SizeEstimate {
	return Estimate(file.Size(), level, pipeline)
}

// EstimateBatch estimates every file and returns the per-file values along
// with an aggregate whose percentage is derived from the summed sizes.
func EstimateBatch(files []InputFile, level Level, pipeline Pipeline) ([]SizeEstimate, SizeEstimate) {
	estimates := make([]SizeEstimate, len(files))
	var total SizeEstimate
	for i, f := range files {
		estimates[i] = EstimateFile(f, level, pipeline)
		total.OriginalBytes += estimates[i].OriginalBytes
		total.EstimatedBytes += estimates[i].EstimatedBytes
	}
	if total.OriginalBytes > 0 {
		saved := float64(total.OriginalBytes - total.EstimatedBytes)
		total.ReductionPercent = math.Round(saved/float64(total.OriginalBytes)*1000) / 10
	}
	return estimates, total
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
