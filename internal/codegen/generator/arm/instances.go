package arm

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// generateInstances renders the per-device instance header: absolute
// register address macros per concrete peripheral instance, plus instance
// parameter and id macros.
func generateInstances(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device) error {
	f := emit.NewFile(filepath.Join(outputDir, "instances", strings.ToLower(dev.Name)+".h"))
	f.WriteString(st.License.CommentBlock(fmt.Sprintf("Instance description for %s", dev.Name)))
	f.WriteString("\n")
	f.OpenGuard(fmt.Sprintf("_%s_INSTANCES_", strings.ToUpper(dev.Name)))

	for _, p := range dev.Peripherals {
		if len(p.Instances) == 0 {
			// Common for crypto or debug-only peripherals whose placement is
			// not publicly documented; their address macros are just omitted.
			logger.Debug("No instance data, skipping instance macros", "peripheral", p.Name)
			continue
		}
		for _, inst := range p.Instances {
			writeInstance(f, st, p, inst)
		}
	}

	f.CloseGuard()
	if err := f.Write(); err != nil {
		return fmt.Errorf("instances header: %w", err)
	}
	logger.Debug("Generated instances header", "device", dev.Name)
	return nil
}

func writeInstance(f *emit.File, st layout.Style, p model.Peripheral, inst model.Instance) {
	f.Printf("/* ========== Register definition for %s peripheral ========== */\n", inst.Name)
	if bg := p.BaseGroup(); bg != nil {
		writeInstanceRegs(f, p, *bg, inst, 0, "", make(map[string]bool))
	}
	f.WriteString("\n")

	if len(inst.Params) > 0 {
		f.Printf("/* ========== Instance parameters for %s peripheral ========== */\n", inst.Name)
		for _, par := range inst.Params {
			f.Printf("#define %-32s %s %s\n",
				strings.ToUpper(inst.Name)+"_"+par.Name, par.Value,
				instComment(inst.Name, par.Caption))
		}
	}
	if inst.ID >= 0 {
		f.Printf("#define %-32s (%d) %s\n",
			strings.ToUpper(inst.Name)+"_INSTANCE_ID", inst.ID,
			instComment(inst.Name, "Instance index"))
	}
	f.WriteString("\n")
}

// writeInstanceRegs walks one group's registers in declaration order and
// emits REG_<INSTANCE>_<NAME> absolute address macros. Group aliases recurse
// with an accumulated base offset; repeated aliases are iterated once per
// repetition with a numeric name suffix.
func writeInstanceRegs(f *emit.File, p model.Peripheral, g model.RegisterGroup, inst model.Instance, base uint64, suffix string, seen map[string]bool) {
	for _, mode := range g.Modes {
		for _, r := range mode.Registers {
			count := r.Count
			if count < 1 {
				count = 1
			}

			if r.IsGroupAlias() {
				sub := p.Group(r.GroupAlias)
				if sub == nil {
					continue
				}
				for i := 0; i < count; i++ {
					subSuffix := suffix
					if count > 1 {
						subSuffix = fmt.Sprintf("%s%d", suffix, i)
					}
					writeInstanceRegs(f, p, *sub, inst, base+r.Offset+uint64(i)*uint64(r.Size), subSuffix, seen)
				}
				continue
			}

			token := layout.VarName(p.Name, r.Name, mode.Name, false)
			for i := 0; i < count; i++ {
				name := fmt.Sprintf("REG_%s_%s%s", strings.ToUpper(inst.Name), token, suffix)
				if count > 1 {
					name = fmt.Sprintf("%s%d", name, i)
				}
				if seen[name] {
					continue
				}
				seen[name] = true
				addr := inst.BaseAddr + base + r.Offset + uint64(i)*uint64(r.Size)
				f.Printf("#define %-32s (0x%08X) %s\n",
					name, addr, instComment(inst.Name, r.Caption))
			}
		}
	}
}

func instComment(instance, text string) string {
	return fmt.Sprintf("/**< (%s) %s */", instance, strings.TrimSpace(text))
}
