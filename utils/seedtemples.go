package utils

import (
	"pilgrimconnect/config"
	"pilgrimconnect/models"
)

func SeedTemples() {
	temples := []models.Temple{
		{
			Name:                "Shri Kashi Vishwanath",
			City:                "Varanasi",
			State:               "Uttar Pradesh",
			OpeningTime:         "04:00",
			ClosingTime:         "23:00",
			SlotDurationMinutes: 60,
			SlotCapacity:        500,
		},
		{
			Name:                "Siddhivinayak Temple",
			City:                "Mumbai",
			State:               "Maharashtra",
			OpeningTime:         "05:30",
			ClosingTime:         "21:00",
			SlotDurationMinutes: 60,
			SlotCapacity:        300,
		},
		{
			Name:                "Tirumala Venkateswara",
			City:                "Tirupati",
			State:               "Andhra Pradesh",
			OpeningTime:         "03:00",
			ClosingTime:         "23:30",
			SlotDurationMinutes: 30,
			SlotCapacity:        800,
		},
	}

	for _, t := range temples {
		var existing models.Temple
		if err := config.DB.Where("name = ?", t.Name).First(&existing).Error; err != nil {
			config.DB.Create(&t)
		}
	}
}
