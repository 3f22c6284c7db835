// Command main runs the database seeder for Bitacora.
package main

import (
	"context"
	"flag"
	"log"

	"bitacora/internal/bootstrap"
	"bitacora/internal/config"
	"bitacora/internal/models"
	"bitacora/internal/repository"
	"bitacora/internal/search"
	"bitacora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of reader accounts to create")
	numPosts := flag.Int("posts", 30, "Number of generated posts besides the samples")
	shouldClean := flag.Bool("clean", false, "Delete posts, reactions and comments before seeding")
	fakerSeed := flag.Int64("seed", 0, "Faker seed for reproducible content (0 = random)")
	reindex := flag.Bool("reindex", true, "Rebuild the search index when MEILI_URL is set")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	admins, err := repository.NewUserRepository(db).ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to load admins: %v", err)
	}
	if len(admins) == 0 {
		log.Fatal("❌ No admin user found. Enable DEV_BOOTSTRAP_ADMIN or create one first.")
	}
	author := admins[0]
	log.Printf("Seeding as %s (%s)", author.Name, author.ID)

	summary, err := seed.NewSeeder(db, *fakerSeed).Run(ctx, author, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("✓ %d users, %d posts, %d reactions, %d comments",
		summary.Users, summary.Posts, summary.Reactions, summary.Comments)

	if *reindex && cfg.MeiliURL != "" {
		idx := search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.MeiliIndex)
		defer idx.Close()

		posts, err := repository.NewPostRepository(db).ListAll(ctx)
		if err != nil {
			log.Fatalf("❌ Loading posts for the index failed: %v", err)
		}
		if err := idx.IndexPosts(posts); err != nil {
			log.Printf("⚠️  Search reindex skipped: %v", err)
		} else {
			log.Printf("✓ Search index rebuilt from %d posts", len(posts))
		}
	}

	log.Println("✨ All done! Your database is now populated with sample data.")
}
