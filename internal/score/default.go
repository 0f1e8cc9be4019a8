package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"log"

	"git.lost.host/meutraa/sppath/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultScorer struct {
	db *sql.DB
}

func (s *DefaultScorer) Init() error {
	db, err := sql.Open("sqlite3", "./paths.db")
	if nil != err {
		return err
	}

	initStatement := `
	create table if not exists paths
	  (
		  id integer not null primary key,
		  sum text,
		  difficulty integer,
		  squeeze real,
		  score_boost integer,
		  summary text
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// HashChart identifies a chart by content, so edited charts do not
// collide with their old paths.
func HashChart(chartData string) string {
	sum := sha256.Sum256([]byte(chartData))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultScorer) Save(result *Result) {
	_, err := s.db.Exec(
		"insert into paths(sum, difficulty, squeeze, score_boost, summary) values(?, ?, ?, ?, ?)",
		result.Sum, int(result.Difficulty), result.Squeeze, result.ScoreBoost, result.Summary)
	if nil != err {
		log.Println("unable to save path", err)
	}
}

func (s *DefaultScorer) Load(chartData string, difficulty game.Difficulty) []Result {
	results := []Result{}
	rows, err := s.db.Query(
		"select sum, difficulty, squeeze, score_boost, summary from paths where sum = ? and difficulty = ?",
		HashChart(chartData), int(difficulty))
	if nil != err && err != sql.ErrNoRows {
		log.Println("unable to load paths", err)
		return results
	}
	defer rows.Close()
	for rows.Next() {
		var r Result
		var diff int
		if err := rows.Scan(&r.Sum, &diff, &r.Squeeze, &r.ScoreBoost, &r.Summary); nil != err {
			log.Println("unable to scan path row", err)
			continue
		}
		r.Difficulty = game.Difficulty(diff)
		results = append(results, r)
	}
	return results
}
