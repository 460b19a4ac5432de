package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

// seedStore is the part of the Postgres store the demo seed writes through.
type seedStore interface {
	CountArtworksByStatus(ctx context.Context, artistID uuid.UUID) (map[domain.ArtworkStatus]int64, error)
	CreateArtwork(ctx context.Context, a domain.Artwork) (*domain.Artwork, error)
	CreateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	InsertTrafficEvents(ctx context.Context, events []domain.TrafficEvent) (int, error)
	RollupTrafficDaily(ctx context.Context, start, end time.Time) (int64, error)
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Artworks int
	Contacts int
	Events   int
	Skipped  bool
}

// seedNamespace derives stable traffic event ids so reruns dedupe.
var seedNamespace = uuid.MustParse("5f1e2c7a-3d8b-4b9e-8a61-0c2f4e6d9b13")

type seedArtwork struct {
	title     string
	medium    string
	price     float64
	status    domain.ArtworkStatus
	soldDays  int
	soldPrice float64
}

var demoArtworks = []seedArtwork{
	{title: "Senja di Parangtritis", medium: "Cat minyak di kanvas", price: 8_500_000, status: domain.StatusSold, soldDays: 140, soldPrice: 8_000_000},
	{title: "Pasar Beringharjo", medium: "Akrilik", price: 6_000_000, status: domain.StatusSold, soldDays: 75, soldPrice: 6_000_000},
	{title: "Kabut Dieng", medium: "Cat air", price: 3_250_000, status: domain.StatusSold, soldDays: 20, soldPrice: 3_500_000},
	{title: "Batik Kontemporer #3", medium: "Mixed media", price: 4_750_000, status: domain.StatusFinished},
	{title: "Sawah Tegalalang", medium: "Cat minyak di kanvas", price: 7_200_000, status: domain.StatusFinished},
	{title: "Potret Nelayan", medium: "Arang", price: 2_500_000, status: domain.StatusInProgress},
	{title: "Studi Wayang", medium: "Tinta", price: 1_800_000, status: domain.StatusConcept},
}

var demoContacts = []domain.Contact{
	{Name: "Galeri Nasional Indonesia", Company: "Galeri Nasional", Email: "pameran@galnas.example.test", Category: domain.CategoryGallery},
	{Name: "Rina Hartono", Email: "rina@example.test", Phone: "+62 812 0000 1111", Category: domain.CategoryCollector},
	{Name: "Budi Santoso", Email: "budi@example.test", Category: domain.CategoryCollector},
	{Name: "Dewi Lestari", Company: "Biennale Jogja", Category: domain.CategoryCurator},
	{Name: "Toko Bingkai Sentosa", Category: domain.CategoryPartner, Notes: "Bingkai kayu jati"},
}

var demoSources = []string{"instagram", "instagram", "direct", "website", "tiktok"}

// SeedDemo writes a demo portfolio for artistID. It does nothing when the
// artist already has artworks.
func SeedDemo(ctx context.Context, store seedStore, artistID uuid.UUID, now time.Time) (SeedResult, error) {
	var result SeedResult
	counts, err := store.CountArtworksByStatus(ctx, artistID)
	if err != nil {
		return result, fmt.Errorf("count artworks: %w", err)
	}
	for _, n := range counts {
		if n > 0 {
			result.Skipped = true
			return result, nil
		}
	}

	var artworkIDs []uuid.UUID
	for _, s := range demoArtworks {
		a := domain.Artwork{
			ArtistID: artistID,
			Title:    s.title,
			Medium:   s.medium,
			Year:     now.Year(),
			Price:    s.price,
			Status:   s.status,
		}
		if s.status == domain.StatusSold {
			soldAt := now.AddDate(0, 0, -s.soldDays)
			soldPrice := s.soldPrice
			a.SoldAt = &soldAt
			a.SoldPrice = &soldPrice
		}
		created, err := store.CreateArtwork(ctx, a)
		if err != nil {
			return result, fmt.Errorf("seed artwork %q: %w", s.title, err)
		}
		artworkIDs = append(artworkIDs, created.ID)
		result.Artworks++
	}

	for _, c := range demoContacts {
		c.ArtistID = artistID
		if _, err := store.CreateContact(ctx, c); err != nil {
			return result, fmt.Errorf("seed contact %q: %w", c.Name, err)
		}
		result.Contacts++
	}

	var events []domain.TrafficEvent
	start := now.AddDate(0, 0, -30)
	for day := 0; day < 30; day++ {
		for i, source := range demoSources {
			if (day+i)%3 == 0 {
				continue
			}
			e := domain.TrafficEvent{
				EventID:    uuid.NewSHA1(seedNamespace, fmt.Appendf(nil, "%s/%d/%d", artistID, day, i)),
				ArtistID:   artistID,
				Source:     source,
				OccurredAt: start.AddDate(0, 0, day).Add(time.Duration(i) * time.Hour),
			}
			if i < len(artworkIDs) {
				id := artworkIDs[(day+i)%len(artworkIDs)]
				e.ArtworkID = &id
			}
			events = append(events, e)
		}
	}
	inserted, err := store.InsertTrafficEvents(ctx, events)
	if err != nil {
		return result, fmt.Errorf("seed traffic: %w", err)
	}
	result.Events = inserted

	if _, err := store.RollupTrafficDaily(ctx, start.AddDate(0, 0, -1), now.AddDate(0, 0, 1)); err != nil {
		return result, fmt.Errorf("roll up traffic: %w", err)
	}
	return result, nil
}

func seedCommand(g *globalFlags) *cobra.Command {
	var (
		databaseURL string
		artist      string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo portfolio into the database",
		Long: `Seed writes demo artworks, contacts and a month of traffic for one
artist directly to Postgres. Artists that already have artworks are left
untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			artistID, err := resolveArtist(artist, cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := SeedDemo(ctx, store, artistID, time.Now().UTC())
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "artist %s already has artworks, nothing seeded\n", artistID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded artist %s: artworks=%d contacts=%d events=%d\n",
				artistID, result.Artworks, result.Contacts, result.Events)
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (overrides config)")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist ID (defaults to the configured subject)")
	return cmd
}
