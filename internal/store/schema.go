package store

// mysqlSchema is applied in order by MySQL.Migrate.  email is binary-collated
// so duplicate lookups are exact-match, as on Postgres.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS contact_submissions (
		row_id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id           CHAR(36)      NOT NULL,
		name         VARCHAR(100)  NOT NULL,
		email        VARCHAR(254)  COLLATE utf8mb4_bin NOT NULL,
		company      VARCHAR(100)  NULL,
		project_type VARCHAR(50)   NULL,
		budget       VARCHAR(50)   NULL,
		message      TEXT          NOT NULL,
		submitted_at DATETIME(6)   NOT NULL,
		relay_status VARCHAR(16)   NOT NULL DEFAULT 'pending',
		client_ip    VARCHAR(45)   NOT NULL,
		UNIQUE KEY uq_contact_id (id),
		KEY idx_contact_email (email),
		KEY idx_contact_submitted (submitted_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS waitlist_submissions (
		row_id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id           CHAR(36)      NOT NULL,
		name         VARCHAR(100)  NOT NULL,
		email        VARCHAR(254)  COLLATE utf8mb4_bin NOT NULL,
		interests    VARCHAR(500)  NULL,
		submitted_at DATETIME(6)   NOT NULL,
		relay_status VARCHAR(16)   NOT NULL DEFAULT 'pending',
		client_ip    VARCHAR(45)   NOT NULL,
		UNIQUE KEY uq_waitlist_id (id),
		KEY idx_waitlist_email (email),
		KEY idx_waitlist_submitted (submitted_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// postgresSchema is applied in order by Postgres.Migrate.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS contact_submissions (
		row_id       BIGSERIAL    PRIMARY KEY,
		id           VARCHAR(36)  NOT NULL UNIQUE,
		name         VARCHAR(100) NOT NULL,
		email        VARCHAR(254) NOT NULL,
		company      VARCHAR(100),
		project_type VARCHAR(50),
		budget       VARCHAR(50),
		message      TEXT         NOT NULL,
		submitted_at TIMESTAMPTZ  NOT NULL,
		relay_status VARCHAR(16)  NOT NULL DEFAULT 'pending',
		client_ip    VARCHAR(45)  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_email ON contact_submissions (email)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_submitted ON contact_submissions (submitted_at DESC)`,
	`CREATE TABLE IF NOT EXISTS waitlist_submissions (
		row_id       BIGSERIAL    PRIMARY KEY,
		id           VARCHAR(36)  NOT NULL UNIQUE,
		name         VARCHAR(100) NOT NULL,
		email        VARCHAR(254) NOT NULL,
		interests    VARCHAR(500),
		submitted_at TIMESTAMPTZ  NOT NULL,
		relay_status VARCHAR(16)  NOT NULL DEFAULT 'pending',
		client_ip    VARCHAR(45)  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_waitlist_email ON waitlist_submissions (email)`,
	`CREATE INDEX IF NOT EXISTS idx_waitlist_submitted ON waitlist_submissions (submitted_at DESC)`,
}
