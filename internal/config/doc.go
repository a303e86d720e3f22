// Package config loads application settings.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. a YAML file, config.yaml by default, which must hold a mapping
//  3. dotenv files, ./.env by default; existing variables are not replaced
//  4. NETCONFIG_* environment variables
//
// Command-line flags are applied by the caller after Load.
//
//	# config.yaml
//	db_path: /var/lib/netconfig/netconfig.db
//	mongo:
//	  uri: mongodb://localhost:27017
//	  db: net_config
//	  collection: network_config
//
// The same Mongo URI from the environment is NETCONFIG_MONGO_URI.
package config
