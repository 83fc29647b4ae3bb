package catalog

import "strings"

// builtinPresetAliases maps every recognized preset name/alias to its
// canonical name.
var builtinPresetAliases = map[string]string{
	"debezium.unwrap_default":            "debezium.unwrap_default",
	"debezium.extract_new_record_state":  "debezium.unwrap_default",
	"debezium.by_logical_table_router":   "debezium.by_logical_table_router",
	"debezium.route_by_field":            "debezium.by_logical_table_router",
}

// builtinPresets holds the canonical config for each built-in preset.
var builtinPresets = map[string]*SmtDecl{
	"debezium.unwrap_default": {
		Name:      "debezium.unwrap_default",
		KnownType: "io.debezium.transforms.ExtractNewRecordState",
		Config: map[string]string{
			"type":              "io.debezium.transforms.ExtractNewRecordState",
			"drop.tombstones":   "true",
			"delete.handling.mode": "drop",
		},
	},
	"debezium.by_logical_table_router": {
		Name:      "debezium.by_logical_table_router",
		KnownType: "io.debezium.transforms.ByLogicalTableRouter",
		Config: map[string]string{
			"type": "io.debezium.transforms.ByLogicalTableRouter",
		},
	},
}

// BuiltinPreset looks up a built-in SMT preset by name or alias.
func (c *Catalog) BuiltinPreset(name string) (*SmtDecl, bool) {
	canonical, ok := builtinPresetAliases[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	decl, ok := builtinPresets[canonical]
	return decl, ok
}
