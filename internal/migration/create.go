package migration

// Create builds a fresh database.
const Create = `
CREATE TABLE User (
  name TEXT PRIMARY KEY,
  session_key TEXT,
  last_updated DATETIME
);

CREATE TABLE Artist (
  name TEXT PRIMARY KEY
);

CREATE TABLE Album (
  artist TEXT,
  name TEXT,
  FOREIGN KEY (artist) REFERENCES Artist(name),
  PRIMARY KEY (artist, name)
);

CREATE TABLE Track (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist TEXT,
  album TEXT,
  name TEXT,
  FOREIGN KEY (artist) REFERENCES Artist(name),
  FOREIGN KEY (artist, album) REFERENCES Album(artist, name)
);

CREATE TABLE Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT,
  track INTEGER,
  date TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (track) REFERENCES Track(id)
);

CREATE INDEX listen_user_date ON Listen (user, date);
` + Charts

// Charts holds the chart tables. It is safe to run against a database that
// already has them.
const Charts = `
CREATE TABLE IF NOT EXISTS ChartAlias (
  user TEXT,
  alias TEXT,
  canonical TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  PRIMARY KEY (user, alias)
);

CREATE TABLE IF NOT EXISTS ChartRun (
  id TEXT PRIMARY KEY,
  user TEXT,
  created DATETIME,
  current_weight INTEGER,
  last_weight INTEGER,
  second_last_weight INTEGER,
  chart_length INTEGER,
  min_plays INTEGER,
  max_adjusted INTEGER,
  FOREIGN KEY (user) REFERENCES User(name)
);

CREATE TABLE IF NOT EXISTS ChartEntry (
  user TEXT,
  track TEXT,
  start TEXT,
  end TEXT,
  plays INTEGER,
  rank INTEGER,
  score INTEGER,
  run TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (run) REFERENCES ChartRun(id),
  PRIMARY KEY (user, track, end)
);

CREATE TABLE IF NOT EXISTS ChartCollectionEntry (
  user TEXT,
  collection TEXT,
  start TEXT,
  end TEXT,
  plays INTEGER,
  rank INTEGER,
  score INTEGER,
  run TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (run) REFERENCES ChartRun(id),
  PRIMARY KEY (user, collection, end)
);
`
