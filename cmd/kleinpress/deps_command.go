package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kleinpress/internal/compression/audio"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report optional codec binaries used by the audio pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := audio.NewHost(cfg.Codecs.FFmpegPath, cfg.Codecs.FFprobePath).Check()

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, s := range statuses {
				// the ffmpeg encoder makes ffmpeg itself mandatory
				required := !s.Optional || (s.Command == cfg.Codecs.FFmpegPath && cfg.Codecs.MP3Encoder == audio.EncoderFFmpeg)
				if !s.Available && required {
					missing++
				}
				rows = append(rows, []string{s.Name, s.Command, yesNo(required), yesNo(s.Available), s.Detail})
			}
			sizeTable{
				headers: []string{"Binary", "Command", "Required", "Available", "Detail"},
				rows:    rows,
			}.write(cmd.OutOrStdout())
			if missing > 0 {
				return fmt.Errorf("%d required binary(ies) missing: %w", missing, audio.ErrHostCodecUnavailable)
			}
			return nil
		},
	}
}
