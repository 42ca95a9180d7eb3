package service

import (
	"fmt"
	"strings"
	"time"

	"petcare/pkg/mailer"
	"petcare/pkg/model"
)

func passwordResetMessage(user *model.User, resetURL string, ttl time.Duration) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", user.FirstName)
	b.WriteString("You requested a password reset for your PetCare account.\n")
	b.WriteString("Open the link below to choose a new password:\n\n")
	fmt.Fprintf(&b, "%s\n\n", resetURL)
	fmt.Fprintf(&b, "The link expires in %d minutes. If you did not request a reset you can ignore this email.\n\n", int(ttl.Minutes()))
	b.WriteString("PetCare Veterinary Clinic\n")

	return mailer.Message{
		To:      []string{user.Email},
		Subject: "PetCare - Password Reset Request",
		Text:    b.String(),
	}
}

func passwordChangedMessage(user *model.User) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", user.FirstName)
	b.WriteString("The password for your PetCare account was just changed.\n")
	b.WriteString("If this was not you, contact the clinic administrator immediately.\n\n")
	b.WriteString("PetCare Veterinary Clinic\n")

	return mailer.Message{
		To:      []string{user.Email},
		Subject: "PetCare - Password Changed",
		Text:    b.String(),
	}
}
