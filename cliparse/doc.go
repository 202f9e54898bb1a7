// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

ParseFlags returns a Config with every setting resolved:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite or postgres)
	--slug-salt   Assessment slug salt
	--backfill    Run the analysis backfill once and exit

# Environment Variables

Flags fall back to environment variables. A .env file is loaded first but
never overrides variables already set.

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	ASSESSMENT_SLUG_SALT → --slug-salt

Everything else is environment only: BASE_URL, AI_PROVIDER, AI_MODEL,
GEMINI_API_KEY, OPENAI_API_KEY, OPENAI_BASE_URL, AI_TIMEOUT,
BACKFILL_DELAY, SESSION_TTL, REQUIRE_PHONE, SEED_DEMO, SEED_FILE,
LOG_LEVEL and LOG_FORMAT.

# Validation

ParseFlags returns an error if DATABASE_URL or ASSESSMENT_SLUG_SALT is
missing, or if a typed value (port, duration, boolean, provider name)
does not parse. AI keys are optional.
*/
package cliparse
