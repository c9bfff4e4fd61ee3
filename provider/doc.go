// Package provider defines the base provider abstraction: a named backend
// that can report availability, created through registered factories and
// looked up by name in a Registry.
//
// Domain packages specialize the registry with their own provider interface:
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.Register("deepgram", dg)
//	p, ok := reg.Get("deepgram")
//
// Absence is not an error at this layer; callers decide whether a missing
// provider is fatal or just skipped.
package provider
