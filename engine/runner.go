package engine

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/models"
	"github.com/spf13/viper"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"gopkg.in/natefinch/lumberjack.v2"
)

// codecNames maps the engine element names carried in stream configs onto
// the encoders ffmpeg knows.
var codecNames = map[string]string{
	models.X264Encoder:    "libx264",
	models.X265Encoder:    "libx265",
	models.NvH264Encoder:  "h264_nvenc",
	models.NvH265Encoder:  "hevc_nvenc",
	models.VaapiH264Enc:   "h264_vaapi",
	models.MsdkH264Enc:    "h264_qsv",
	models.OpenH264Enc:    "libopenh264",
	models.LameMp3Encoder: "libmp3lame",
	models.FaacEncoder:    "aac",
	models.VoaacEncoder:   "aac",
}

func codecName(engineName string) string {
	if name, ok := codecNames[engineName]; ok {
		return name
	}
	return engineName
}

// Runner drives one hardware stream through ffmpeg. Proxy variants have no
// pipeline and never get a runner.
type Runner struct {
	stream  *models.Stream
	Stopped bool

	logger *log.Logger
	cancel func()
	lock   sync.Mutex
}

func NewRunner(st *models.Stream) (*Runner, error) {
	if !st.IsHardware() {
		return nil, fmt.Errorf("stream %s (%s) is not runnable", st.ID, st.Kind())
	}
	if len(st.Hardware.Input) == 0 {
		return nil, fmt.Errorf("stream %s has no input", st.ID)
	}
	return &Runner{
		stream:  st,
		Stopped: true,
		logger:  log.NewLogger(st.ID, log.StreamId),
	}, nil
}

// compile builds the ffmpeg invocation for the stream.
func (r *Runner) compile() *ffmpeg.Stream {
	st := r.stream
	inputArgs := ffmpeg.KwArgs{}
	if st.Hardware.Loop {
		inputArgs["stream_loop"] = "-1"
	}
	if uri := st.Hardware.Input[0].URI; strings.HasPrefix(uri, "rtsp://") {
		inputArgs["rtsp_transport"] = "tcp"
	}

	outputArgs := ffmpeg.KwArgs{"f": "hls"}
	if st.Encode != nil {
		e := st.Encode
		if e.RelayVideo {
			outputArgs["c:v"] = "copy"
		} else {
			outputArgs["c:v"] = codecName(e.VideoCodec)
		}
		if e.RelayAudio {
			outputArgs["c:a"] = "copy"
		} else {
			outputArgs["c:a"] = codecName(e.AudioCodec)
		}
		if e.FrameRate != models.InvalidFrameRate {
			outputArgs["r"] = e.FrameRate
		}
		if e.VideoBitRate != models.InvalidVideoBitRate {
			outputArgs["b:v"] = e.VideoBitRate
		}
		if e.AudioBitRate != models.InvalidAudioBitRate {
			outputArgs["b:a"] = e.AudioBitRate
		}
		if e.AudioChannelsCount != models.InvalidAudioChannelsCount {
			outputArgs["ac"] = e.AudioChannelsCount
		}
		if e.Size.IsValid() {
			outputArgs["s"] = e.Size.String()
		}
		if e.Deinterlace {
			outputArgs["vf"] = "yadif"
		}
	} else {
		outputArgs["c:v"] = "copy"
		outputArgs["c:a"] = "copy"
	}

	target := ""
	if len(st.Output) > 0 {
		target = st.Output[0].URI
	}
	return ffmpeg.Input(st.Hardware.Input[0].URI, inputArgs).
		Output(target, outputArgs).
		OverWriteOutput()
}

func (r *Runner) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.Stopped {
		r.logger.Warn("runner is already running")
		return nil
	}
	r.Stopped = false

	go func() {
		ffmpegCmd := viper.GetString("codec.ffmpeg_binary")
		if ffmpegCmd == "" {
			ffmpegCmd = "ffmpeg"
		}
		stream := r.compile()
		if globalArgs := viper.GetString("codec.ffmpeg_general_options"); strings.TrimSpace(globalArgs) != "" {
			stream = stream.GlobalArgs(strings.Split(globalArgs, " ")...)
		}

		// ffmpeg log file
		lp := viper.GetString("codec.ffmpeg_log_dir")
		if lp == "" {
			lp = r.stream.Settings().FeedbackDirectory
		}
		out := &lumberjack.Logger{
			Filename:   path.Join(lp, fmt.Sprintf("ffmpeg-%s.log", r.stream.ID)),
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
		}
		stream = stream.WithOutput(out).WithErrorOutput(out)

		r.cancel = stream.GetCancelFunc()

		r.logger.Info(fmt.Sprintf("Runner[%s] starting...", r.stream.Kind()))
		if err := stream.RunWith(ffmpegCmd); err != nil {
			r.logger.Error("ffmpeg exited: ", err)
		}
		r.logger.Info(fmt.Sprintf("Runner[%s] finished...", r.stream.Kind()))

		r.lock.Lock()
		r.Stopped = true
		r.cancel = nil
		r.lock.Unlock()
	}()
	return nil
}

func (r *Runner) Stop() error {
	if r != nil && r.cancel != nil {
		r.cancel()
	}
	return nil
}
