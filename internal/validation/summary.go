package validation

import "git.home.luguber.info/inful/labdocs/internal/value"

// Summary counts the main inventory sections of a configuration.
type Summary struct {
	Networks        int
	Services        int
	EnabledServices int
}

// Summarize counts networks, services and enabled services.
func Summarize(root value.Value) Summary {
	var s Summary
	if networks, ok := root.Get("networks"); ok {
		s.Networks = networks.Len()
	}
	services, ok := root.Get("services")
	s.Services = services.Len()
	if !ok || !services.IsMapping() {
		return s
	}
	for _, name := range services.Keys() {
		service, _ := services.Get(name)
		if !service.IsMapping() {
			continue
		}
		if enabled, _ := service.Get("enabled"); enabled.Truthy() {
			s.EnabledServices++
		}
	}
	return s
}
