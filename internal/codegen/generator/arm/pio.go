package arm

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// pinIndex derives the flat pin number from a GPIO pad name like "PA08":
// 32 pins per port bank, banks lettered from A. Non-GPIO pads ("RESET",
// "GNDANA") fail the parse and are skipped by the caller.
func pinIndex(pad string) (int, error) {
	if len(pad) < 3 || pad[0] != 'P' || pad[1] < 'A' || pad[1] > 'Z' {
		return 0, fmt.Errorf("pad '%s' is not a port pin", pad)
	}
	n, err := strconv.Atoi(pad[2:])
	if err != nil {
		return 0, fmt.Errorf("pad '%s' is not a port pin: %w", pad, err)
	}
	return int(pad[1]-'A')*32 + n, nil
}

// generatePIO renders the legacy-style pin definition header: one PIN/PORT
// macro pair per port pad and PIN/MUX/PINMUX triples per peripheral signal.
func generatePIO(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device) error {
	f := emit.NewFile(filepath.Join(outputDir, "pio", strings.ToLower(dev.Name)+".h"))
	f.WriteString(st.License.CommentBlock(fmt.Sprintf("Peripheral I/O description for %s", dev.Name)))
	f.WriteString("\n")
	f.OpenGuard(fmt.Sprintf("_%s_PIO_", strings.ToUpper(dev.Name)))

	for _, pad := range dev.Pins {
		idx, err := pinIndex(pad)
		if err != nil {
			logger.Debug("Skipping non-numeric pad", "pad", pad)
			continue
		}
		f.Printf("#define PIN_%-24s %3d  /**< \\brief Pin Number for %s */\n", pad, idx, pad)
		f.Printf("#define PORT_%-23s (_UL_(1) << %d)\n", pad, idx%32)
	}
	f.WriteString("\n")

	for _, p := range dev.Peripherals {
		for _, inst := range p.Instances {
			writeSignalMacros(logger, f, inst)
		}
	}

	f.CloseGuard()
	if err := f.Write(); err != nil {
		return fmt.Errorf("pio header: %w", err)
	}
	logger.Debug("Generated pio header", "device", dev.Name)
	return nil
}

// writeSignalMacros emits the pin-mux macros for one instance's signals.
// Peripheral function letters map onto mux values A=0, B=1, ...
func writeSignalMacros(logger *slog.Logger, f *emit.File, inst model.Instance) {
	for _, sig := range inst.Signals {
		idx, err := pinIndex(sig.Pad)
		if err != nil {
			logger.Debug("Skipping signal on non-numeric pad", "instance", inst.Name, "pad", sig.Pad)
			continue
		}
		if sig.Function == "" {
			continue
		}
		mux := int(sig.Function[0] - 'A')
		group := strings.ToUpper(sig.Group)
		token := fmt.Sprintf("%s%s_%s_%s%d", sig.Pad, sig.Function, strings.ToUpper(inst.Name), group, sig.Index)

		f.Printf("#define PIN_%-28s _L_(%d)   /**< \\brief %s signal: %s%d on %s mux %s */\n",
			token, idx, inst.Name, group, sig.Index, sig.Pad, sig.Function)
		f.Printf("#define MUX_%-28s _L_(%d)\n", token, mux)
		f.Printf("#define PINMUX_%-25s ((PIN_%s << 16) | MUX_%s)\n", token, token, token)
	}
}
