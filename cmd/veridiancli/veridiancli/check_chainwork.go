package veridiancli

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/veridian-blockchain/veridian/errors"
	"github.com/veridian-blockchain/veridian/model"
	"github.com/veridian-blockchain/veridian/work"
)

type blockData struct {
	Height    uint32
	ID        int64
	ParentID  int64
	Hash      string
	Bits      model.CompactDifficulty
	ChainWork work.Work
}

type errorRecord struct {
	ID               int64
	Height           uint32
	Hash             string
	StoredChainWork  work.Work
	CorrectChainWork work.Work
}

// buildPostgresConnString builds a PostgreSQL connection string from a URL
func buildPostgresConnString(storeURL *url.URL) string {
	dbHost := storeURL.Hostname()
	port := storeURL.Port()
	dbPort := 5432
	if port != "" {
		dbPort, _ = strconv.Atoi(port)
	}
	dbName := strings.TrimPrefix(storeURL.Path, "/")
	dbUser := ""
	dbPassword := ""

	if storeURL.User != nil {
		dbUser = storeURL.User.Username()
		dbPassword, _ = storeURL.User.Password()
	}

	// Default sslmode to "disable"
	sslMode := "disable"
	queryParams := storeURL.Query()
	if val, ok := queryParams["sslmode"]; ok && len(val) > 0 {
		sslMode = val[0]
	}

	connStr := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		dbHost, dbPort, dbName, sslMode)

	if dbUser != "" {
		connStr = fmt.Sprintf("%s user=%s", connStr, dbUser)
	}

	if dbPassword != "" {
		connStr = fmt.Sprintf("%s password=%s", connStr, dbPassword)
	}

	return connStr
}

func checkChainwork(dbURL string, dryRun bool, batchSize int, startHeight, endHeight uint32) error {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return errors.NewProcessingError("failed to parse database URL", err)
	}

	var dbType, connStr string
	switch parsedURL.Scheme {
	case "sqlite", "sqlite3":
		dbType = "sqlite"
		connStr = strings.TrimPrefix(dbURL, "sqlite://")
		connStr = strings.TrimPrefix(connStr, "sqlite3://")
	case "postgres", "postgresql":
		dbType = "postgres"
		connStr = buildPostgresConnString(parsedURL)
	default:
		return errors.NewProcessingError("unsupported database type: %s", parsedURL.Scheme)
	}

	db, err := sql.Open(dbType, connStr)
	if err != nil {
		return errors.NewStorageError("failed to open database", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return errors.NewStorageError("failed to connect to database", err)
	}

	fmt.Printf("Connected to %s database\n", dbType)
	fmt.Printf("Dry run mode: %v\n", dryRun)

	chain, err := loadBestChain(db, dbType)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d blocks in best chain\n", len(chain))

	// The full chain is needed to accumulate work correctly; the range only
	// limits which blocks are reported and fixed.
	chainworkErrors, err := verifyChainworkInRange(chain, startHeight, endHeight)
	if err != nil {
		return err
	}

	fmt.Printf("\n")
	fmt.Printf("%s\n", strings.Repeat("=", 60))
	fmt.Printf("CHAINWORK VERIFICATION COMPLETE\n")

	if endHeight == 0 && len(chain) > 0 {
		endHeight = chain[len(chain)-1].Height
	}

	blocksChecked := 0
	for _, block := range chain {
		if block.Height >= startHeight && block.Height <= endHeight {
			blocksChecked++
		}
	}

	fmt.Printf("Total blocks checked: %d\n", blocksChecked)
	fmt.Printf("Total errors found: %d\n", len(chainworkErrors))

	if len(chainworkErrors) == 0 {
		fmt.Printf("\n")
		fmt.Printf("All chainwork values are correct!\n")
		return nil
	}

	fmt.Printf("\n")
	fmt.Printf("First difference at height: %d\n", chainworkErrors[0].Height)
	fmt.Printf("Last difference at height:  %d\n", chainworkErrors[len(chainworkErrors)-1].Height)

	if dryRun {
		fmt.Printf("\n")
		fmt.Printf("DRY RUN MODE - No changes made to database\n")
		fmt.Printf("To apply fixes, run with --dry-run=false\n")
		return nil
	}

	fmt.Printf("\n")
	fmt.Printf("%s\n", strings.Repeat("=", 60))
	fmt.Printf("APPLYING CHAINWORK FIXES\n")

	if err := applyFixes(db, dbType, chainworkErrors, batchSize); err != nil {
		return err
	}

	fmt.Printf("\n")
	fmt.Printf("Successfully updated chainwork values in database!\n")

	return nil
}

func loadBestChain(db *sql.DB, dbType string) ([]blockData, error) {
	// Get the max height block (chain tip)
	var tipID int64
	var tipHeight uint32

	query := `SELECT id, height FROM blocks ORDER BY height DESC LIMIT 1`
	if err := db.QueryRow(query).Scan(&tipID, &tipHeight); err != nil {
		return nil, errors.NewStorageError("failed to get chain tip", err)
	}

	fmt.Printf("Chain tip at height %d (ID: %d)\n", tipHeight, tipID)

	// Walk backwards from tip to genesis using parent_id
	chain := make([]blockData, 0, tipHeight+1)
	currentID := tipID

	for {
		var block blockData
		var parentID sql.NullInt64
		var hashHex, bitsHex, chainWorkHex string

		query := `SELECT id, parent_id, height, hash, n_bits, chain_work FROM blocks WHERE id = $1`
		if dbType == "sqlite" {
			query = strings.ReplaceAll(query, "$1", "?")
		}

		err := db.QueryRow(query, currentID).Scan(
			&block.ID, &parentID, &block.Height,
			&hashHex, &bitsHex, &chainWorkHex,
		)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("failed to query block at ID %d", currentID), err)
		}

		// NULL parent_id marks the genesis block
		if parentID.Valid {
			block.ParentID = parentID.Int64
		} else {
			block.ParentID = -1
		}

		block.Hash = hashHex

		block.Bits, err = model.NewCompactDifficultyFromString(bitsHex)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("block %s has invalid n_bits %q", block.Hash, bitsHex), err)
		}

		storedWork, ok := new(big.Int).SetString(chainWorkHex, 16)
		if !ok {
			return nil, errors.NewStorageError("block %s has invalid chain_work %q", block.Hash, chainWorkHex)
		}

		block.ChainWork, err = work.NewWorkFromBig(storedWork)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("block %s chain_work out of range", block.Hash), err)
		}

		chain = append(chain, block)

		if block.Height == 0 || block.ParentID == -1 {
			break
		}
		currentID = block.ParentID
	}

	// Reverse to get ascending order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}

func verifyChainworkInRange(chain []blockData, startHeight, endHeight uint32) ([]errorRecord, error) {
	if endHeight == 0 && len(chain) > 0 {
		endHeight = chain[len(chain)-1].Height
	}

	fmt.Printf("Verifying chainwork calculations from height %d to %d...\n", startHeight, endHeight)

	chainworkErrors := make([]errorRecord, 0)

	var cumulativeChainWork work.Work

	for _, block := range chain {
		var err error
		cumulativeChainWork, err = work.CalculateWork(cumulativeChainWork, block.Bits)
		if err != nil {
			return nil, errors.NewProcessingError("failed to calculate work at height %d", block.Height, err)
		}

		if block.Height < startHeight || block.Height > endHeight {
			continue
		}

		if block.ChainWork.Cmp(cumulativeChainWork) != 0 {
			if len(chainworkErrors) == 0 {
				fmt.Printf("\nFirst chainwork error detected:\n")
				fmt.Printf("  Height:   %d\n", block.Height)
				fmt.Printf("  Hash:     %s\n", block.Hash)
				fmt.Printf("  nBits:    %s\n", block.Bits)
				fmt.Printf("  Stored:   %s\n", block.ChainWork)
				fmt.Printf("  Correct:  %s\n", cumulativeChainWork)
			}

			chainworkErrors = append(chainworkErrors, errorRecord{
				ID:               block.ID,
				Height:           block.Height,
				Hash:             block.Hash,
				StoredChainWork:  block.ChainWork,
				CorrectChainWork: cumulativeChainWork,
			})
		}

		if block.Height%100000 == 0 && block.Height > 0 {
			fmt.Printf("Processed %d blocks, found %d errors so far...\n", block.Height, len(chainworkErrors))
		}
	}

	return chainworkErrors, nil
}

func applyFixes(db *sql.DB, dbType string, chainworkErrors []errorRecord, batchSize int) error {
	// Stop cleanly between batches on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		fmt.Printf("\nReceived interrupt signal, stopping gracefully...\n")
		cancel()
	}()

	totalUpdates := len(chainworkErrors)
	updateCount := 0

	for i := 0; i < len(chainworkErrors); i += batchSize {
		select {
		case <-ctx.Done():
			fmt.Printf("Update interrupted after %d/%d updates\n", updateCount, totalUpdates)
			return nil
		default:
		}

		end := i + batchSize
		if end > len(chainworkErrors) {
			end = len(chainworkErrors)
		}
		batch := chainworkErrors[i:end]

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return errors.NewStorageError("failed to start transaction", err)
		}

		updateQuery := `UPDATE blocks SET chain_work = $1 WHERE id = $2`
		if dbType == "sqlite" {
			updateQuery = `UPDATE blocks SET chain_work = ? WHERE id = ?`
		}

		stmt, err := tx.Prepare(updateQuery)
		if err != nil {
			_ = tx.Rollback()
			return errors.NewStorageError("failed to prepare statement", err)
		}

		for _, errRec := range batch {
			chainWorkHex := hex.EncodeToString(errRec.CorrectChainWork.Bytes())

			if _, err := stmt.ExecContext(ctx, chainWorkHex, errRec.ID); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return errors.NewStorageError(fmt.Sprintf("failed to update block %s", errRec.Hash), err)
			}
			updateCount++
		}

		_ = stmt.Close()

		if err := tx.Commit(); err != nil {
			return errors.NewStorageError("failed to commit transaction", err)
		}

		percentage := float64(updateCount) / float64(totalUpdates) * 100
		fmt.Printf("Updated %d/%d blocks (%.1f%%)\n", updateCount, totalUpdates, percentage)
	}

	fmt.Printf("Successfully updated %d blocks\n", updateCount)
	return nil
}
