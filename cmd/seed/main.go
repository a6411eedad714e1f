// Command seed fills a development database with demo users, profiles and posts.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Posts per user")
	reactions := flag.Int("reactions", 5, "Maximum likes and comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fakerSeed := flag.Int64("seed", time.Now().UnixNano(), "Seed for generated content")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), *fakerSeed)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		MaxReactions: *reactions,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d likes, %d comments", sum.Users, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
