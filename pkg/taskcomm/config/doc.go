// Package config loads declarative manifests of shares and queues.
//
// Embedded-style applications often declare their inter-task channels
// up front, in one place. A manifest makes that declaration data:
//
//	shares:
//	  - name: speed
//	queues:
//	  - name: commands
//	    capacity: 10
//	    timeout: 100ms
//	  - name: telemetry
//	    capacity: 64
//
// Load it and provision the primitives in one step:
//
//	manifest, err := config.FromFile("channels.yaml")
//	if err != nil { ... }
//	set, err := config.Provision(manifest)
//	if err != nil { ... }
//	cmds := set.Queues["commands"]
//
// YAML and JSON are supported, dispatched by file extension.
package config
