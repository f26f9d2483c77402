package db

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables needed by the election portal.
// Safe to call multiple times - uses IF NOT EXISTS throughout.
func EnsureSchema(conn *sql.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Voters, one per flat
CREATE TABLE IF NOT EXISTS voters (
    id TEXT PRIMARY KEY,
    flat_number TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password TEXT NOT NULL,
    wing TEXT NOT NULL,
    floor_number INTEGER,
    email TEXT,
    phone TEXT,
    device_token TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Administrators
CREATE TABLE IF NOT EXISTS admins (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    name TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Elections
CREATE TABLE IF NOT EXISTS elections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMPTZ,
    end_date TIMESTAMPTZ,
    is_open BOOLEAN NOT NULL DEFAULT TRUE,
    auto_open_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    society_name TEXT NOT NULL DEFAULT '',
    positions TEXT[] NOT NULL,
    total_flats_wing_a INTEGER NOT NULL DEFAULT 45,
    total_flats_wing_b INTEGER NOT NULL DEFAULT 60,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Candidates. votes is mutated only by the tally engine.
CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position TEXT NOT NULL,
    flat_number TEXT NOT NULL DEFAULT '',
    wing TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_candidates_election_position ON candidates(election_id, position);
CREATE INDEX IF NOT EXISTS idx_candidates_election_votes ON candidates(election_id, votes DESC);

-- Election committee members
CREATE TABLE IF NOT EXISTS committee_members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position TEXT NOT NULL,
    flat_number TEXT NOT NULL,
    wing TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    image TEXT,
    responsibilities TEXT,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Attendance, one row per (voter, election)
CREATE TABLE IF NOT EXISTS attendance (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voters(id) ON DELETE CASCADE,
    flat_number TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    login_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    vote_time TIMESTAMPTZ,
    voted BOOLEAN NOT NULL DEFAULT FALSE,
    rejected BOOLEAN NOT NULL DEFAULT FALSE,
    rejected_at TIMESTAMPTZ,
    ip_address TEXT,
    user_agent TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (voter_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_election_voted ON attendance(election_id, voted);

-- Ballots. The unique constraint on (voter_id, election_id) is the
-- authoritative guard against double voting.
CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voters(id) ON DELETE CASCADE,
    flat_number TEXT NOT NULL,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    cast_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (voter_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_ballots_election_flat ON ballots(election_id, flat_number);

-- One choice per position within a ballot
CREATE TABLE IF NOT EXISTS ballot_choices (
    ballot_id TEXT NOT NULL REFERENCES ballots(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    UNIQUE (ballot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_ballot_choices_candidate ON ballot_choices(candidate_id);

-- Denormalized per-election results aggregate
CREATE TABLE IF NOT EXISTS results (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL UNIQUE REFERENCES elections(id) ON DELETE CASCADE,
    election_status TEXT NOT NULL DEFAULT 'ongoing'
        CHECK (election_status IN ('ongoing', 'declared', 'cancelled')),
    declared_at TIMESTAMPTZ,
    total_voters INTEGER NOT NULL DEFAULT 0,
    total_flats INTEGER NOT NULL DEFAULT 0,
    total_votes_cast INTEGER NOT NULL DEFAULT 0 CHECK (total_votes_cast >= 0),
    voting_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    non_voting_flats TEXT[] NOT NULL DEFAULT '{}',
    rejected_votes INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Per-candidate snapshot inside the aggregate
CREATE TABLE IF NOT EXISTS result_entries (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL,
    candidate_name TEXT NOT NULL DEFAULT '',
    position TEXT NOT NULL DEFAULT '',
    total_votes INTEGER NOT NULL DEFAULT 0 CHECK (total_votes >= 0),
    vote_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    voted_by_flats TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (election_id, candidate_id)
);

-- Passkey credentials for admin passwordless login
CREATE TABLE IF NOT EXISTS passkey_credentials (
    id SERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    credential_id BYTEA NOT NULL,
    public_key BYTEA NOT NULL,
    sign_count BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_passkey_credentials_user ON passkey_credentials(user_id);
`
