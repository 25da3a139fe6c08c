package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/carheater/config"
	coremqtt "github.com/kilianp07/carheater/core/mqtt"
	infraheater "github.com/kilianp07/carheater/infra/heater"
	"github.com/kilianp07/carheater/infra/mqtt"
)

var heaterCmd = &cobra.Command{
	Use:       "heater on|off",
	Short:     "Switch the configured heater backend once",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE:      switchHeater,
}

func init() {
	rootCmd.AddCommand(heaterCmd)
}

func switchHeater(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var client coremqtt.Client
	if cfg.Heater.Backend == infraheater.BackendMQTT {
		mqttCfg := cfg.MQTT
		mqttCfg.ClientID = fmt.Sprintf("%s-cli-%d", mqttCfg.ClientID, time.Now().UnixNano())
		pc, err := mqtt.NewPahoClient(mqttCfg)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		defer func() { _ = pc.Close() }()
		client = pc
	}
	h, err := infraheater.New(cfg.Heater, client)
	if err != nil {
		return err
	}
	defer func() {
		if err := infraheater.Close(h); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "close heater: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Scheduler.ActionTimeoutSeconds)*time.Second)
	defer cancel()
	if args[0] == "on" {
		err = h.TurnOn(ctx)
	} else {
		err = h.TurnOff(ctx)
	}
	if err != nil {
		return fmt.Errorf("heater %s: %w", args[0], err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "heater %s via %s backend\n", args[0], cfg.Heater.Backend)
	return err
}
