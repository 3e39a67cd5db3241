package sqlitedb

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS missions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  category TEXT NOT NULL,
  priority TEXT NOT NULL,
  impact INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  planned_date TEXT NOT NULL,
  completed_at TEXT,
  difficulty TEXT,
  energy_after INTEGER
);`,
	`CREATE INDEX IF NOT EXISTS missions_user_status ON missions (user_id, status);`,
	`CREATE TABLE IF NOT EXISTS routines (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  exercises_json TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS workout_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  routine_id TEXT NOT NULL,
  routine_name TEXT NOT NULL,
  total_volume REAL NOT NULL,
  duration_minutes INTEGER NOT NULL,
  logged_at TEXT NOT NULL,
  sets_json TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS ledgers (
  user_id TEXT PRIMARY KEY,
  experience INTEGER NOT NULL DEFAULT 0,
  missions_completed INTEGER NOT NULL DEFAULT 0,
  workouts_completed INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS awards (
  source_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  experience INTEGER NOT NULL,
  awarded_at TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS changes (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  record_type TEXT NOT NULL,
  record_id TEXT NOT NULL,
  op TEXT NOT NULL,
  changed_at TEXT NOT NULL
);`,
}
