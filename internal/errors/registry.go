package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		DocURL:   "https://vango.dev/docs/vnav/errors/E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://vango.dev/docs/vnav/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E103",
	},

	// ============================================
	// Routing Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryRouting,
		Message:  "No routes configured",
		Detail:   "The route table is empty. A router cannot resolve any path without routes.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E120",
	},
	"E121": {
		Category: CategoryRouting,
		Message:  "Invalid route definition",
		DocURL:   "https://vango.dev/docs/vnav/errors/E121",
	},
	"E122": {
		Category: CategoryRouting,
		Message:  "Route has no component",
		Detail:   "Each route needs a component identifier or a render function.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E122",
	},

	// ============================================
	// Loader Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryLoader,
		Message:  "Component template not found",
		DocURL:   "https://vango.dev/docs/vnav/errors/E140",
	},
	"E141": {
		Category: CategoryLoader,
		Message:  "Component import failed",
		DocURL:   "https://vango.dev/docs/vnav/errors/E141",
	},

	// ============================================
	// CLI Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Invalid path argument",
		Detail:   "Paths passed to 'vnav resolve' must start with '/'.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E160",
	},
	"E161": {
		Category: CategoryCLI,
		Message:  "Configuration already exists",
		Detail:   "'vnav init' will not overwrite an existing vnav.json or vnav.yaml.",
		DocURL:   "https://vango.dev/docs/vnav/errors/E161",
	},
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
