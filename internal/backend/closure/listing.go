package closure

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// render prints the function in a small SSA-like form:
//
//	define @main(%0: %number) -> (%number) {
//	  %1 = call double(%0) : %number
//	  ret %1
//	}
func render(fb *FunctionBuilder, results []backend.Value) string {
	var sb strings.Builder
	sb.WriteString(fb.ctx.typeTable())

	fmt.Fprintf(&sb, "define @%s(", fb.name)
	for i, p := range fb.params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %%%s", p, p.Repr.TypeName())
	}
	sb.WriteString(") -> (")
	for i, r := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%%%s", r.Repr.TypeName())
	}
	sb.WriteString(") {\n")

	for _, in := range fb.body {
		switch in.kind {
		case instrComment:
			fmt.Fprintf(&sb, "  ; %s\n", in.text)
		case instrConst:
			fmt.Fprintf(&sb, "  %%%d = const %%%s %s\n", in.results[0], fb.regs[in.results[0]].TypeName(), literal(in.value))
		case instrCall:
			sb.WriteString("  ")
			if len(in.results) > 0 {
				sb.WriteString(regList(in.results))
				sb.WriteString(" = ")
			}
			fmt.Fprintf(&sb, "call %s(%s)", in.name, regList(in.args))
			if len(in.results) > 0 {
				sb.WriteString(" :")
				for _, r := range in.results {
					fmt.Fprintf(&sb, " %%%s", fb.regs[r].TypeName())
				}
			}
			sb.WriteString("\n")
		case instrRelease:
			fmt.Fprintf(&sb, "  release %s(%%%d)\n", in.name, in.args[0])
		}
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	fmt.Fprintf(&sb, "  ret %s\n}\n", regList(ids))
	return sb.String()
}

func regList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%%%d", id)
	}
	return strings.Join(parts, ", ")
}

func literal(v cty.Value) string {
	if !v.IsWhollyKnown() {
		return "<unknown>"
	}
	if v.Type().IsCapsuleType() {
		return "<" + v.Type().FriendlyName() + ">"
	}
	buf, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(buf)
}
