// Package config loads runtime configuration for the openpass CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file: --config, or openpass.yaml in the user config
//     directory or the working directory.
//  3. A .env file (--env-file, default ".env"); variables already set in the
//     process environment win over it.
//  4. OPENPASS_* environment variables, with "." in keys replaced by "_"
//     (OPENPASS_ADVISOR_API_KEY, OPENPASS_BACKUP_S3_BUCKET, ...).
//  5. Command-line flags.
//
// GROQ_API_KEY is honoured as a fallback for advisor.api_key.
//
// # YAML schema
//
//	db_driver: sqlite
//	db_dsn: openpass.db
//	bcrypt_cost: 12
//	log_level: info
//	wordlist: ""
//	advisor:
//	  enabled: false
//	  base_url: https://api.groq.com/openai/v1
//	  api_key: ""
//	  model: llama-3.3-70b-versatile
//	  rps: 1
//	  timeout: 30s
//	backup:
//	  target: file
//	  dir: backups
//	  s3:
//	    bucket: ""
//	    region: us-east-1
//	    endpoint: ""
//	    access_key: ""
//	    secret_key: ""
package config
