// Package preset provides the preset catalogue for slotlogic.
//
// A preset is a named parameter surface: an interface tree of typed slots
// plus the role bindings used by batch applies. Presets are defined in YAML
// files, validated at load time, persisted to SQLite and served to the REST
// API through an in-memory store.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                         Preset Catalogue                            │
//	│                                                                     │
//	│  ┌───────────────┐    ┌───────────────┐    ┌───────────────────┐    │
//	│  │    Loader     │    │     Store     │    │    Repository     │    │
//	│  │  (loader.go)  │───▶│  (store.go)   │    │ (repository.go)   │    │
//	│  │               │    │               │    │                   │    │
//	│  │ • YAML parse  │    │ • Sessions    │    │ • presets table   │    │
//	│  │ • Validation  │    │ • Registries  │    │ • slot_values     │    │
//	│  │ • Slug/ID gen │    │ • Deep copies │    │ • StateSink       │    │
//	│  └───────────────┘    └───────┬───────┘    └─────────┬─────────┘    │
//	└───────────────────────────────│──────────────────────│──────────────┘
//	                                │                      │
//	                                ▼                      ▼
//	                  ┌─────────────────────┐   ┌──────────────────────┐
//	                  │   slot.Registry     │   │   SQLite Database    │
//	                  │ (one per preset)    │   │                      │
//	                  └─────────────────────┘   └──────────────────────┘
//
// # Usage
//
//	presets, err := preset.LoadDir("/etc/slotlogic/presets")
//	if err != nil {
//	    return err
//	}
//
//	repo := preset.NewSQLiteRepository(db)
//	store := preset.NewStore()
//	store.SetLogger(log)
//
//	for _, p := range presets {
//	    if err := repo.Reconcile(ctx, p); err != nil {
//	        return err
//	    }
//	    err := store.Add(p, func(p *preset.Preset) slot.Sink {
//	        return slot.MultiSink{preset.NewStateSink(repo, p.ID)}
//	    })
//	    if err != nil {
//	        return err
//	    }
//	}
//
//	session, _ := store.Session("interior-door")
//	session.Registry.SetNumeric(ctx, "Width", 1.2)
//
// # Thread Safety
//
// The Store is safe for concurrent use; lookups return deep copies so cached
// trees cannot be mutated by callers. Sessions share one registry per preset,
// which serialises its own writes.
package preset
