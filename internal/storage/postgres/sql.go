package postgres

import "lightbnb/internal/query"

const insertPropertySQL = `
INSERT INTO properties AS p
  (owner_id, title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   parking_spaces, number_of_bathrooms, number_of_bedrooms,
   country, street, city, province, post_code, active)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + query.PropertyColumns

const upsertPropertySQL = `
INSERT INTO properties
  (id, owner_id, title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   parking_spaces, number_of_bathrooms, number_of_bedrooms,
   country, street, city, province, post_code, active)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
  owner_id            = EXCLUDED.owner_id,
  title               = EXCLUDED.title,
  description         = EXCLUDED.description,
  thumbnail_photo_url = EXCLUDED.thumbnail_photo_url,
  cover_photo_url     = EXCLUDED.cover_photo_url,
  cost_per_night      = EXCLUDED.cost_per_night,
  parking_spaces      = EXCLUDED.parking_spaces,
  number_of_bathrooms = EXCLUDED.number_of_bathrooms,
  number_of_bedrooms  = EXCLUDED.number_of_bedrooms,
  country             = EXCLUDED.country,
  street              = EXCLUDED.street,
  city                = EXCLUDED.city,
  province            = EXCLUDED.province,
  post_code           = EXCLUDED.post_code,
  active              = EXCLUDED.active
`

const insertUserSQL = `INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`

const upsertUserSQL = `
INSERT INTO users (id, name, email, password)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
  name     = EXCLUDED.name,
  email    = EXCLUDED.email,
  password = EXCLUDED.password
`

const upsertReservationSQL = `
INSERT INTO reservations (id, start_date, end_date, property_id, guest_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  start_date  = EXCLUDED.start_date,
  end_date    = EXCLUDED.end_date,
  property_id = EXCLUDED.property_id,
  guest_id    = EXCLUDED.guest_id
`

const upsertReviewSQL = `
INSERT INTO property_reviews (id, guest_id, property_id, reservation_id, rating, message)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  guest_id       = EXCLUDED.guest_id,
  property_id    = EXCLUDED.property_id,
  reservation_id = EXCLUDED.reservation_id,
  rating         = EXCLUDED.rating,
  message        = EXCLUDED.message
`

// Identity columns do not advance when rows are inserted with explicit ids.
const syncSequenceSQL = `SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`

var sequencedTables = []string{"users", "properties", "reservations", "property_reviews"}

const propertiesByOwnerSQL = `
SELECT
  ` + query.PropertyColumns + `,
  AVG(pr.rating) AS average_rating
FROM properties p
LEFT JOIN property_reviews pr ON pr.property_id = p.id
WHERE p.owner_id = $1
GROUP BY p.id
ORDER BY p.id DESC
LIMIT $2
`

const reservationsSQL = `
SELECT
  r.id, r.start_date, r.end_date, r.property_id, r.guest_id,
  ` + query.PropertyColumns + `,
  AVG(pr.rating) AS average_rating
FROM reservations r
JOIN properties p ON p.id = r.property_id
LEFT JOIN property_reviews pr ON pr.property_id = p.id
WHERE r.guest_id = $1
GROUP BY r.id, p.id
ORDER BY r.start_date, r.id
LIMIT $2
`

const getUserByEmailSQL = `SELECT id, name, email, password FROM users WHERE email = $1`

const getUserByIDSQL = `SELECT id, name, email, password FROM users WHERE id = $1`
