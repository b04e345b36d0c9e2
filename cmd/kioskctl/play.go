package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/kiosk/playback"
	"github.com/yungbote/kiosk-backend/internal/kiosk/player"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

var (
	playDevice string
	playStdin  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a headless display that logs every frame",
	Long: `Runs the playback state machine against the API and logs each rendered frame.
With --stdin, lines drive the display: "tap <node-id>", "back", "close",
"home", "started", "slide <value>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()
		c, err := newClient(log)
		if err != nil {
			return err
		}
		cfg := player.ConfigFromEnv()
		if playDevice != "" {
			cfg.Device = playDevice
		}
		p := player.New(log, c, &logRenderer{log: log}, cfg, playback.RealClock())
		if playStdin {
			go readCommands(cmd.Context(), log, os.Stdin, p.Machine())
		}
		return p.Run(cmd.Context())
	},
}

func init() {
	playCmd.Flags().StringVar(&playDevice, "device", "", "device label sent with the change stream")
	playCmd.Flags().BoolVar(&playStdin, "stdin", false, "read display input from stdin")
}

type logRenderer struct {
	log *logger.Logger
}

func (r *logRenderer) Render(st playback.State) {
	kv := []interface{}{
		"seq", st.Seq,
		"phase", string(st.Phase),
		"video", st.VideoURL,
		"loop", st.Loop,
		"hotspots", hotspotTitles(st.Hotspots),
		"can_go_back", st.CanGoBack,
	}
	if st.Node != nil {
		kv = append(kv, "node", st.Node.Title, "node_id", st.Node.ID)
	}
	if st.VVIP != nil {
		kv = append(kv, "vvip", st.VVIP.Name)
	}
	if st.Action != nil {
		kv = append(kv, "action", string(st.Action.Type))
		if st.Action.Type == kiosk.ActionSlider {
			kv = append(kv, "slider", st.SliderValue)
		}
	}
	r.log.Info("Frame", kv...)
}

func (r *logRenderer) RenderQR(qr *kiosk.QRConfig) {
	if qr == nil {
		r.log.Info("QR hidden")
		return
	}
	r.log.Info("QR shown", "url", qr.URL, "x", qr.X, "y", qr.Y, "width", qr.Width, "height", qr.Height)
}

func hotspotTitles(nodes []*kiosk.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, fmt.Sprintf("%s=%s", n.Title, n.ID))
	}
	return out
}

func readCommands(ctx context.Context, log *logger.Logger, r io.Reader, m *playback.Machine) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := applyCommand(m, sc.Text()); err != nil {
			log.Warn("Bad input", "line", sc.Text(), "error", err)
		}
	}
}

func applyCommand(m *playback.Machine, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "tap":
		if len(fields) != 2 {
			return fmt.Errorf("usage: tap <node-id>")
		}
		id, err := uuid.Parse(fields[1])
		if err != nil {
			return err
		}
		m.Tap(id)
	case "back":
		m.Back()
	case "close":
		m.Close()
	case "home":
		m.GoHome()
	case "started":
		m.VideoStarted()
	case "slide":
		if len(fields) != 2 {
			return fmt.Errorf("usage: slide <value>")
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		m.Slide(v)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
