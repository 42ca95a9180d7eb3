package main

import (
	"context"
	"fmt"

	apptrepository "petcare/internal/appointments/repository"
	ownerrepository "petcare/internal/owners/repository"
	ownerservice "petcare/internal/owners/service"
	ownervalidator "petcare/internal/owners/validator"
	petrepository "petcare/internal/pets/repository"
	petservice "petcare/internal/pets/service"
	petvalidator "petcare/internal/pets/validator"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"

	"github.com/Pallinder/go-randomdata"
	"github.com/spf13/cobra"
)

var (
	breeds = map[string][]string{
		"Dog":    {"Labrador", "Beagle", "German Shepherd", "Golden Retriever", "Pug"},
		"Cat":    {"Persian", "Siamese", "Maine Coon", "Bengal"},
		"Bird":   {"Budgie", "Cockatiel", "Lovebird"},
		"Rabbit": {"Holland Lop", "Dutch", "Lionhead"},
	}
	colors = []string{"Black", "White", "Brown", "Golden", "Grey", "Spotted"}
)

func ownersCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "owners",
		Short: "Create random owners with one or two pets each",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			return seedOwners(ctx, count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of owners to create")
	return cmd
}

func seedOwners(ctx context.Context, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	owners := ownerrepository.NewMongoOwnerRepository(cfg)
	pets := petrepository.NewMongoPetRepository(cfg)
	appointments := apptrepository.NewMongoAppointmentRepository(cfg)

	ownerService := ownerservice.NewOwnerService(owners, pets, ownervalidator.NewOwnerValidator(cfg.Log), cfg)
	petService := petservice.NewPetService(pets, owners, appointments, petvalidator.NewPetValidator(cfg.Log), cfg)

	created, petsCreated := 0, 0
	for i := 0; i < count; i++ {
		owner := randomOwner()
		if err := ownerService.Create(ctx, owner); err != nil {
			if apperrors.HasCode(err, apperrors.CodeConflict) {
				cfg.Log.Warn("Owner email taken, skipping", "email", owner.Email)
				continue
			}
			return err
		}
		created++

		for n := randomdata.Number(1, 3); n > 0; n-- {
			if err := petService.Create(ctx, randomPet(owner.ID)); err != nil {
				return err
			}
			petsCreated++
		}
	}

	cfg.Log.Info("Seeded owners", "owners", created, "pets", petsCreated)
	return nil
}

func randomOwner() *model.Owner {
	return &model.Owner{
		FirstName: randomdata.FirstName(randomdata.RandomGender),
		LastName:  randomdata.LastName(),
		Email:     randomdata.Email(),
		Phone:     fmt.Sprintf("+9477%07d", randomdata.Number(0, 10000000)),
		Address: model.Address{
			Street:  randomdata.Street(),
			City:    randomdata.City(),
			State:   randomdata.State(randomdata.Large),
			ZipCode: randomdata.PostalCode("US"),
		},
		EmergencyContact: model.EmergencyContact{
			Name:         randomdata.FullName(randomdata.RandomGender),
			Phone:        fmt.Sprintf("+9471%07d", randomdata.Number(0, 10000000)),
			Relationship: randomdata.StringSample("Spouse", "Parent", "Sibling", "Friend"),
		},
	}
}

func randomPet(ownerID string) *model.Pet {
	species := randomdata.StringSample("Dog", "Cat", "Bird", "Rabbit")
	return &model.Pet{
		Name:    randomdata.SillyName(),
		Species: species,
		Breed:   randomdata.StringSample(breeds[species]...),
		Age:     float64(randomdata.Number(0, 15)),
		Weight:  randomdata.Decimal(1, 40, 1),
		Color:   randomdata.StringSample(colors...),
		Gender:  randomdata.StringSample(model.Genders...),
		OwnerID: ownerID,
	}
}
