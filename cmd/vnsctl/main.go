// cmd/vnsctl/main.go
//
// vnsctl is an interactive console for SmartVNS devices attached over
// a serial port. It talks the device shell protocol directly without
// going through the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"go.uber.org/zap"

	"smartvns/internal/config"
	serialscanner "smartvns/internal/discovery/serial"
	"smartvns/internal/protocol"
	"smartvns/pkg/configcodec"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool
	portFlag   string
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&portFlag, "port", "", "Serial port to connect on startup.")
}

// Shell provides the ishell backed interactive console.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *config.Config
	Conn   *Conn
	Logger *zap.Logger
}

// Conn is an open console session to one device.
type Conn struct {
	Port      string
	Transport protocol.Transport
	Client    *protocol.ShellClient
}

// New creates a new shell.
func New(cfg *config.Config, logger *zap.Logger) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: cfg,
		Logger: logger,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// shellFrom gets Shell from ishell context.
func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// mustBeConnected wraps command funcs that require an open session.
func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if shellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// opCtx returns the context used for a single console operation.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Discover lists SmartVNS serial consoles attached to this host.
func (s *Shell) Discover() ([]string, error) {
	scanner := serialscanner.NewScanner(s.Logger, &serialscanner.Config{
		ScanTimeout: s.Config.Device.Serial.Timeout,
		VendorID:    s.Config.Device.USB.VendorID,
		ProductID:   s.Config.Device.USB.ProductID,
	})

	ctx, cancel := opCtx()
	defer cancel()

	found, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	ports := make([]string, 0, len(found))
	for _, device := range found {
		if port, ok := device.ConnectionInfo["port"].(string); ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

// Connect opens a console session on the given serial port.
func (s *Shell) Connect(port string) error {
	transport := protocol.NewSerialTransport(&protocol.SerialConfig{
		Port:     port,
		BaudRate: s.Config.Device.Serial.BaudRate,
		DataBits: s.Config.Device.Serial.DataBits,
		StopBits: s.Config.Device.Serial.StopBits,
		Parity:   s.Config.Device.Serial.Parity,
		Timeout:  s.Config.Device.Serial.Timeout,
	}, s.Logger)

	ctx, cancel := opCtx()
	defer cancel()

	if err := transport.Open(ctx); err != nil {
		return err
	}

	if s.Conn != nil {
		s.Conn.Transport.Close()
	}
	s.Conn = &Conn{
		Port:      port,
		Transport: transport,
		Client:    protocol.NewShellClient(transport, s.Logger),
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

// Disconnect closes the current session.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Transport.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// openPeer opens a second, temporary session used by pair/unpair.
func (s *Shell) openPeer(ctx context.Context, port string) (*Conn, error) {
	transport := protocol.NewSerialTransport(&protocol.SerialConfig{
		Port:     port,
		BaudRate: s.Config.Device.Serial.BaudRate,
		DataBits: s.Config.Device.Serial.DataBits,
		StopBits: s.Config.Device.Serial.StopBits,
		Parity:   s.Config.Device.Serial.Parity,
		Timeout:  s.Config.Device.Serial.Timeout,
	}, s.Logger)

	if err := transport.Open(ctx); err != nil {
		return nil, err
	}
	return &Conn{
		Port:      port,
		Transport: transport,
		Client:    protocol.NewShellClient(transport, s.Logger),
	}, nil
}

// formatValue renders a one-field command result, as a JSON object
// when jsonOut is set and as the plain form otherwise.
func formatValue(jsonOut bool, key string, value interface{}, plain string) (string, error) {
	if !jsonOut {
		return plain, nil
	}
	out, err := json.Marshal(map[string]interface{}{key: value})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// emitMapping prints a config mapping as indented JSON, or saves it
// when the argument names a file.
func emitMapping(c *ishell.Context, mapping map[string]interface{}, saveTo string) {
	out, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		c.Err(err)
		return
	}
	if saveTo != "" {
		if err := os.WriteFile(saveTo, append(out, '\n'), 0o644); err != nil {
			c.Err(err)
			return
		}
		c.Printf("saved to %s\n", saveTo)
		return
	}
	c.Println(string(out))
}

// parseMapping parses the remaining args as one JSON object. An
// argument of the form @file loads the object from that file.
func parseMapping(args []string) (map[string]interface{}, error) {
	raw := strings.Join(args, " ")
	if strings.HasPrefix(raw, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, err
		}
		raw = string(data)
	}
	var mapping map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	return mapping, nil
}

var commands = []*ishell.Cmd{
	{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list SmartVNS serial consoles",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			ports, err := s.Discover()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := formatValue(true, "ports", ports, "")
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(out)
				return
			}
			if len(ports) == 0 {
				c.Println("No devices found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	},
	{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)

			var port string
			if len(c.Args) >= 1 {
				port = c.Args[0]
			} else {
				ports, err := s.Discover()
				if err != nil {
					c.Err(err)
					return
				}
				switch len(ports) {
				case 0:
					c.Err(fmt.Errorf("no device discovered"))
					return
				case 1:
					port = ports[0]
				default:
					if !s.Interactive {
						c.Err(fmt.Errorf("more than 1 device discovered in non-interactive mode"))
						return
					}
					port = ports[s.Shell.MultiChoice(ports, "Which one to connect?")]
				}
			}

			if err := s.Connect(port); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			shellFrom(c).Disconnect()
		},
	},
	{
		Name: "version",
		Help: "read firmware version",
		Func: mustBeConnected(func(c *ishell.Context) {
			ctx, cancel := opCtx()
			defer cancel()

			s := shellFrom(c)
			version, err := s.Conn.Client.Version(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			out, err := formatValue(s.OutputJSON, "version", version, version)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		}),
	},
	{
		Name: "batt",
		Help: "read battery level",
		Func: mustBeConnected(func(c *ishell.Context) {
			ctx, cancel := opCtx()
			defer cancel()

			s := shellFrom(c)
			level, err := s.Conn.Client.Battery(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			out, err := formatValue(s.OutputJSON, "battery", level, fmt.Sprintf("%d%%", level))
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		}),
	},
	{
		Name: "cfg",
		Help: "get sys|stim [FILE] | set sys|stim JSON|@FILE",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: cfg get sys|stim [FILE] | cfg set sys|stim JSON|@FILE"))
				return
			}

			s := shellFrom(c)
			action, kind := c.Args[0], c.Args[1]

			var saveTo string
			if action == "get" && len(c.Args) > 2 {
				saveTo = c.Args[2]
			}

			ctx, cancel := opCtx()
			defer cancel()

			switch {
			case action == "get" && kind == "sys":
				cfg, err := s.Conn.Client.GetSysConfig(ctx)
				if err != nil {
					c.Err(err)
					return
				}
				emitMapping(c, configcodec.SysConfigToMap(cfg), saveTo)

			case action == "get" && kind == "stim":
				cfg, err := s.Conn.Client.GetStimConfig(ctx)
				if err != nil {
					c.Err(err)
					return
				}
				emitMapping(c, configcodec.StimConfigToMap(cfg), saveTo)

			case action == "set" && kind == "sys":
				mapping, err := parseMapping(c.Args[2:])
				if err != nil {
					c.Err(err)
					return
				}
				cfg, err := configcodec.SysConfigFromMap(mapping)
				if err != nil {
					c.Err(err)
					return
				}
				if err := s.Conn.Client.SetSysConfig(ctx, cfg); err != nil {
					c.Err(err)
					return
				}
				c.Println("OK")

			case action == "set" && kind == "stim":
				mapping, err := parseMapping(c.Args[2:])
				if err != nil {
					c.Err(err)
					return
				}
				cfg, err := configcodec.StimConfigFromMap(mapping)
				if err != nil {
					c.Err(err)
					return
				}
				if err := s.Conn.Client.SetStimConfig(ctx, cfg); err != nil {
					c.Err(err)
					return
				}
				c.Println("OK")

			default:
				c.Err(fmt.Errorf("usage: cfg get sys|stim [FILE] | cfg set sys|stim JSON|@FILE"))
			}
		}),
	},
	{
		Name: "trigger",
		Help: "DURATION_MS - trigger stimulation",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: trigger DURATION_MS"))
				return
			}
			durationMs, err := strconv.ParseUint(c.Args[0], 10, 32)
			if err != nil {
				c.Err(fmt.Errorf("invalid duration: %w", err))
				return
			}

			s := shellFrom(c)
			ctx, cancel := opCtx()
			defer cancel()

			cfg, err := s.Conn.Client.GetStimConfig(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			cfg.TriggerMs = uint32(durationMs)
			if err := s.Conn.Client.SetStimConfig(ctx, cfg); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "intensity",
		Help: "MICROAMPS - set stimulation amplitude",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: intensity MICROAMPS"))
				return
			}
			intensityUA, err := strconv.ParseUint(c.Args[0], 10, 32)
			if err != nil {
				c.Err(fmt.Errorf("invalid intensity: %w", err))
				return
			}

			s := shellFrom(c)
			ctx, cancel := opCtx()
			defer cancel()

			cfg, err := s.Conn.Client.GetStimConfig(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			cfg.IntensityUA = uint32(intensityUA)
			if err := s.Conn.Client.SetStimConfig(ctx, cfg); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "time",
		Help: "write host clock to device RTC",
		Func: mustBeConnected(func(c *ishell.Context) {
			ctx, cancel := opCtx()
			defer cancel()

			if err := shellFrom(c).Conn.Client.SetTime(ctx, time.Now()); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "reboot",
		Help: "reset the device",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			ctx, cancel := opCtx()
			defer cancel()

			if err := s.Conn.Client.Reboot(ctx); err != nil {
				c.Err(err)
				return
			}
			s.Disconnect()
			c.Println("OK")
		}),
	},
	{
		Name: "factory-reset",
		Help: "erase device storage and reset",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			if s.Interactive {
				c.Print("Erase all recorded data? [y/N] ")
				if strings.ToLower(strings.TrimSpace(c.ReadLine())) != "y" {
					c.Println("aborted")
					return
				}
			}

			ctx, cancel := opCtx()
			defer cancel()

			if err := s.Conn.Client.FactoryReset(ctx); err != nil {
				c.Err(err)
				return
			}
			s.Disconnect()
			c.Println("OK")
		}),
	},
	{
		Name: "pair",
		Help: "PEER_PORT - exchange pairing keys with device on PEER_PORT",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: pair PEER_PORT"))
				return
			}

			s := shellFrom(c)
			ctx, cancel := opCtx()
			defer cancel()

			peer, err := s.openPeer(ctx, c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer peer.Transport.Close()

			if err := protocol.Pair(ctx, s.Conn.Client, peer.Client); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
	{
		Name: "unpair",
		Help: "PEER_PORT - clear pairing keys on both devices",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: unpair PEER_PORT"))
				return
			}

			s := shellFrom(c)
			ctx, cancel := opCtx()
			defer cancel()

			peer, err := s.openPeer(ctx, c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer peer.Transport.Close()

			if err := protocol.Unpair(ctx, s.Conn.Client, peer.Client); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	},
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if portFlag != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", portFlag)
		}
		if err := s.Connect(portFlag); err != nil {
			log.Fatalf("connect %q failed: %v", portFlag, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zap.NewNop()
	New(cfg, logger).Run(flag.Args()...)
}
