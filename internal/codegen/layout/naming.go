package layout

import (
	"strings"

	"github.com/mcutools/packgen/internal/codegen/common"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// The naming engine. Every call site (register typedefs, group members,
// mode unions, macro blocks) must derive the identical identifier for the
// same (owner, name, mode) tuple, so all rules live here and nowhere else.

// StripOwner removes a leading "OWNER_" or "OWNER" prefix from a raw vendor
// name. A leading underscore left over from the removal is dropped too.
func StripOwner(name, owner string) string {
	if owner == "" || !strings.HasPrefix(name, owner) {
		return name
	}
	rest := name[len(owner):]
	return strings.TrimPrefix(rest, "_")
}

// qualifyMode returns the mode token to insert between owner and name.
// DEFAULT and empty modes are omitted, as is a mode the name already
// starts with.
func qualifyMode(name, mode string) string {
	if mode == "" || mode == model.DefaultMode {
		return ""
	}
	if strings.HasPrefix(name, mode) {
		return ""
	}
	return mode
}

// GroupTypeName derives the C struct type name for one mode of a register
// group. Legacy style concatenates PascalCase tokens with no suffix
// ("TcCount8", "Port"); Microchip style joins snake_case tokens with a
// "_registers_t" suffix ("tc_count8_registers_t", "port_registers_t").
func GroupTypeName(st Style, owner, group, mode string) string {
	name := StripOwner(group, owner)
	m := qualifyMode(name, mode)

	if st.Convention == Legacy {
		return common.ToPascalCase(owner) + common.ToPascalCase(m) + common.ToPascalCase(name)
	}

	parts := []string{strings.ToLower(owner)}
	if m != "" {
		parts = append(parts, strings.ToLower(m))
	}
	if name != "" {
		parts = append(parts, strings.ToLower(name))
	}
	return strings.Join(parts, "_") + "_registers_t"
}

// RegisterTypeName derives the union typedef name for one register.
func RegisterTypeName(st Style, owner, reg, mode string) string {
	return MacroPrefix(owner, reg, mode) + "_Type"
}

// MacroPrefix builds the upper-case OWNER[_MODE]_NAME prefix shared by a
// register's macro block and typedef.
func MacroPrefix(owner, name, mode string) string {
	stripped := StripOwner(name, owner)
	m := qualifyMode(stripped, mode)

	parts := []string{strings.ToUpper(owner)}
	if m != "" {
		parts = append(parts, strings.ToUpper(m))
	}
	if stripped != "" {
		parts = append(parts, strings.ToUpper(stripped))
	}
	return strings.Join(parts, "_")
}

// VarName derives the struct member name for a register slot. Scalar members
// strip the owning peripheral prefix; array-of-struct members re-add it.
func VarName(owner, name, mode string, withOwner bool) string {
	stripped := StripOwner(name, owner)
	m := qualifyMode(stripped, mode)

	var parts []string
	if withOwner {
		parts = append(parts, strings.ToUpper(owner))
	}
	if m != "" {
		parts = append(parts, strings.ToUpper(m))
	}
	if stripped != "" {
		parts = append(parts, strings.ToUpper(stripped))
	}
	if len(parts) == 0 {
		parts = append(parts, strings.ToUpper(owner))
	}
	return strings.Join(parts, "_")
}
