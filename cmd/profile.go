// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var profileUpdate struct {
	address    string
	city       string
	region     string
	postalCode string
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := load(cmd, "Loading profile", func() (cache.Result[*model.UserProfile], error) {
			return app.queries.Profile(cmd.Context(), readOpts()...)
		})
		if err != nil {
			return err
		}
		return printProfile(cmd, p)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update address details of your profile",
	Long: `Update changes only the fields whose flags are given. Every successful update
refreshes the cached profile and signed-in user.`,
	Example: `  kenes profile update --city Almaty --postal-code 050000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.ProfilePatch
		set := func(flag string, v string, dst **string) {
			if cmd.Flags().Changed(flag) {
				*dst = &v
			}
		}
		set("address", profileUpdate.address, &patch.Address)
		set("city", profileUpdate.city, &patch.City)
		set("region", profileUpdate.region, &patch.Region)
		set("postal-code", profileUpdate.postalCode, &patch.PostalCode)
		if patch.Address == nil && patch.City == nil && patch.Region == nil && patch.PostalCode == nil {
			return fmt.Errorf("nothing to update: pass at least one of --address, --city, --region, --postal-code")
		}

		p, err := withSpinner(cmd, "Saving profile", func() (*model.UserProfile, error) {
			return app.queries.UpdateProfile(cmd.Context(), patch)
		})
		if err != nil {
			return err
		}
		return printProfile(cmd, p)
	},
}

func printProfile(cmd *cobra.Command, p *model.UserProfile) error {
	return renderFields(cmd, p, [][2]string{
		{"Name", p.User.DisplayName()},
		{"Email", orDash(p.User.Email)},
		{"Phone", orDash(p.User.Phone)},
		{"IIN", orDash(p.User.IIN)},
		{"Address", orDash(p.Address)},
		{"City", orDash(p.City)},
		{"Region", orDash(p.Region)},
		{"Postal code", orDash(p.PostalCode)},
	})
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileUpdate.address, "address", "", "Street address")
	f.StringVar(&profileUpdate.city, "city", "", "City")
	f.StringVar(&profileUpdate.region, "region", "", "Region")
	f.StringVar(&profileUpdate.postalCode, "postal-code", "", "Postal code")
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
