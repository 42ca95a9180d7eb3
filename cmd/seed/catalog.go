package main

import (
	"context"

	productrepository "petcare/internal/products/repository"
	productservice "petcare/internal/products/service"
	productvalidator "petcare/internal/products/validator"
	servicerepository "petcare/internal/vetservices/repository"
	serviceservice "petcare/internal/vetservices/service"
	servicevalidator "petcare/internal/vetservices/validator"
	"petcare/pkg/model"

	"github.com/spf13/cobra"
)

var demoServices = []model.Service{
	{
		Name:                 "Annual Wellness Exam",
		Description:          "Comprehensive yearly health check including physical examination, weight check and health assessment.",
		Category:             "Wellness",
		Price:                75,
		Duration:             45,
		AvailableFor:         []string{"All"},
		RequiresAppointment:  true,
		VeterinarianRequired: "Any",
		Icon:                 "fas fa-heartbeat",
		PopularityScore:      95,
	},
	{
		Name:                 "Pet Consultation",
		Description:          "General consultation for health concerns, behavioral issues or general pet care advice.",
		Category:             "General Care",
		Price:                50,
		Duration:             30,
		AvailableFor:         []string{"All"},
		RequiresAppointment:  true,
		VeterinarianRequired: "Any",
		Icon:                 "fas fa-comments",
		PopularityScore:      88,
	},
	{
		Name:                 "Health Certificate",
		Description:          "Official health certificate for travel, boarding or breeding purposes.",
		Category:             "General Care",
		Price:                45,
		Duration:             20,
		AvailableFor:         []string{"Dog", "Cat"},
		RequiresAppointment:  true,
		VeterinarianRequired: "Any",
		Icon:                 "fas fa-certificate",
		PopularityScore:      60,
	},
	{
		Name:                 "24/7 Emergency Care",
		Description:          "Round the clock emergency care for critical conditions and injuries.",
		Category:             "Emergency Services",
		Price:                200,
		Duration:             60,
		AvailableFor:         []string{"All"},
		IsEmergencyService:   true,
		VeterinarianRequired: "Senior",
		Icon:                 "fas fa-ambulance",
		PopularityScore:      85,
	},
	{
		Name:                 "Urgent Care Visit",
		Description:          "Same day care for non life threatening conditions that need prompt attention.",
		Category:             "Emergency Services",
		Price:                120,
		Duration:             45,
		AvailableFor:         []string{"All"},
		IsEmergencyService:   true,
		VeterinarianRequired: "Any",
		Icon:                 "fas fa-first-aid",
		PopularityScore:      78,
	},
	{
		Name:                    "Dental Cleaning",
		Description:             "Professional scaling and polishing under anesthesia with an oral health assessment.",
		Category:                "Dental Care",
		Price:                   180,
		Duration:                90,
		AvailableFor:            []string{"Dog", "Cat"},
		RequiresAppointment:     true,
		PreparationInstructions: "No food after midnight before the procedure.",
		FollowUpRequired:        true,
		VeterinarianRequired:    "Specialist",
		Icon:                    "fas fa-tooth",
		PopularityScore:         70,
	},
	{
		Name:                 "Core Vaccination Package",
		Description:          "Core vaccines recommended for puppies, kittens and adult boosters.",
		Category:             "Vaccination",
		Price:                65,
		Duration:             20,
		AvailableFor:         []string{"Dog", "Cat"},
		RequiresAppointment:  true,
		VeterinarianRequired: "Any",
		Icon:                 "fas fa-syringe",
		PopularityScore:      92,
	},
}

var demoProducts = []model.Product{
	{
		Name:          "Royal Canin Adult Dog Food",
		Description:   "Complete and balanced nutrition for adult dogs with high quality protein.",
		Category:      "Food & Treats",
		Brand:         "Royal Canin",
		Price:         2599,
		OriginalPrice: 2999,
		Stock:         45,
		Images:        []model.ProductImage{{URL: "https://images.unsplash.com/photo-1589924691995-400dc9ecc119", Alt: "Royal Canin Adult Dog Food"}},
		AvailableFor:  []string{"Dog"},
		Size:          "L",
		Weight:        "15kg",
		AgeGroup:      "Adult",
		Features:      []string{"High protein", "Digestive support"},
		Ingredients:   []string{"Chicken", "Rice", "Corn"},
		NutritionalInfo: model.NutritionalInfo{
			Protein: "25%", Fat: "14%", Fiber: "3%", Moisture: "10%",
		},
		Rating:                  4.8,
		ReviewCount:             324,
		Tags:                    []string{"premium", "adult", "dry food"},
		IsFeatured:              true,
		IsOnSale:                true,
		VeterinarianRecommended: true,
		PopularityScore:         95,
	},
	{
		Name:            "Premium Cat Treats",
		Description:     "Crunchy salmon treats with added vitamins for a healthy coat.",
		Category:        "Food & Treats",
		Brand:           "Whiskas",
		Price:           549,
		Stock:           120,
		AvailableFor:    []string{"Cat"},
		AgeGroup:        "All Ages",
		Features:        []string{"Real salmon", "Added vitamins"},
		Rating:          4.5,
		ReviewCount:     156,
		Tags:            []string{"treats", "salmon"},
		PopularityScore: 80,
	},
	{
		Name:            "Interactive Puzzle Ball",
		Description:     "Treat dispensing puzzle ball that keeps dogs mentally stimulated.",
		Category:        "Toys & Entertainment",
		Brand:           "KONG",
		Price:           1099,
		OriginalPrice:   1299,
		Stock:           4,
		AvailableFor:    []string{"Dog"},
		Size:            "M",
		Features:        []string{"Treat dispensing", "Durable rubber"},
		Colors:          []string{"Red", "Blue"},
		Rating:          4.6,
		ReviewCount:     89,
		Tags:            []string{"puzzle", "enrichment"},
		IsFeatured:      true,
		IsOnSale:        true,
		PopularityScore: 75,
	},
	{
		Name:            "Feather Wand",
		Description:     "Interactive feather wand toy for active play with cats.",
		Category:        "Toys & Entertainment",
		Brand:           "Petstages",
		Price:           399,
		Stock:           60,
		AvailableFor:    []string{"Cat"},
		Size:            "One Size",
		Colors:          []string{"Multicolor"},
		Rating:          4.3,
		ReviewCount:     67,
		Tags:            []string{"interactive", "feather"},
		PopularityScore: 60,
	},
	{
		Name:                    "Flea & Tick Shampoo",
		Description:             "Gentle oatmeal shampoo that kills fleas and ticks on contact.",
		Category:                "Grooming Supplies",
		Brand:                   "Adams",
		Price:                   899,
		Stock:                   0,
		AvailableFor:            []string{"Dog", "Cat"},
		Weight:                  "500ml",
		Rating:                  4.1,
		ReviewCount:             42,
		Tags:                    []string{"grooming", "flea"},
		VeterinarianRecommended: true,
		PopularityScore:         50,
	},
}

func servicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "Create the veterinary service catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			return seedServices(ctx)
		},
	}
}

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Create the shop product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			return seedProducts(ctx)
		},
	}
}

func seedServices(ctx context.Context) error {
	repo := servicerepository.NewMongoServiceRepository(cfg)
	count, err := repo.CountActive(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		cfg.Log.Info("Services already exist", "count", count)
		return nil
	}

	svc := serviceservice.NewServiceService(repo, servicevalidator.NewServiceValidator(cfg.Log), cfg)
	for i := range demoServices {
		s := demoServices[i]
		if err := svc.Create(ctx, &s); err != nil {
			return err
		}
	}
	cfg.Log.Info("Seeded services", "count", len(demoServices))
	return nil
}

func seedProducts(ctx context.Context) error {
	repo := productrepository.NewMongoProductRepository(cfg)
	count, err := repo.CountActive(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		cfg.Log.Info("Products already exist", "count", count)
		return nil
	}

	svc := productservice.NewProductService(repo, productvalidator.NewProductValidator(cfg.Log), cfg)
	for i := range demoProducts {
		p := demoProducts[i]
		if err := svc.Create(ctx, &p); err != nil {
			return err
		}
	}
	cfg.Log.Info("Seeded products", "count", len(demoProducts))
	return nil
}
