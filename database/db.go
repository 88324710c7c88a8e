package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/inlethq/inlet/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createProjectTable(db)
	if err != nil {
		return nil, err
	}
	err = createContactTables(db)
	if err != nil {
		return nil, err
	}
	err = createVisionModelTable(db)
	if err != nil {
		return nil, err
	}
	err = createAccountTable(db)
	if err != nil {
		return nil, err
	}
	err = createImportRunTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createProjectTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id SERIAL PRIMARY KEY,
			project_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			customer TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createContactTables creates the contact table plus the e-mail alias and
// project link tables. A contact can carry several e-mail addresses; the
// import pipeline matches against all of them.
func createContactTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id SERIAL PRIMARY KEY,
			contact_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			phone TEXT,
			roles TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contact_emails (
			id SERIAL PRIMARY KEY,
			contact_id TEXT NOT NULL REFERENCES contacts(contact_id),
			email TEXT NOT NULL,
			UNIQUE (contact_id, email)
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS project_contacts (
			id SERIAL PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(project_id),
			contact_id TEXT NOT NULL REFERENCES contacts(contact_id),
			linked_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (project_id, contact_id)
		)
	`)
	return err
}

func createVisionModelTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vision_models (
			id SERIAL PRIMARY KEY,
			model_id TEXT NOT NULL UNIQUE,
			project_id TEXT NOT NULL REFERENCES projects(project_id),
			sku TEXT NOT NULL,
			line TEXT,
			position TEXT,
			equipment TEXT,
			quantity INT NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (project_id, sku)
		)
	`)
	return err
}

func createAccountTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			company_name TEXT NOT NULL,
			trading_names TEXT[],
			status TEXT,
			health_score DOUBLE PRECISION,
			renewal_date TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createImportRunTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS import_runs (
			id SERIAL PRIMARY KEY,
			import_id TEXT NOT NULL UNIQUE,
			flow TEXT NOT NULL,
			target_id TEXT,
			status TEXT NOT NULL,
			report JSONB,
			started_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)
	`)
	return err
}
