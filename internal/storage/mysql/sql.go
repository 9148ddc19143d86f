package mysql

import "lightbnb/internal/query"

// -----------------------------------------------------------------------------
// WRITE STATEMENTS
// -----------------------------------------------------------------------------

const insertPropertySQL = `
INSERT INTO properties
  (owner_id, title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   parking_spaces, number_of_bathrooms, number_of_bedrooms,
   country, street, city, province, post_code, active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const upsertPropertySQL = `
INSERT INTO properties
  (id, owner_id, title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   parking_spaces, number_of_bathrooms, number_of_bedrooms,
   country, street, city, province, post_code, active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  owner_id            = VALUES(owner_id),
  title               = VALUES(title),
  description         = VALUES(description),
  thumbnail_photo_url = VALUES(thumbnail_photo_url),
  cover_photo_url     = VALUES(cover_photo_url),
  cost_per_night      = VALUES(cost_per_night),
  parking_spaces      = VALUES(parking_spaces),
  number_of_bathrooms = VALUES(number_of_bathrooms),
  number_of_bedrooms  = VALUES(number_of_bedrooms),
  country             = VALUES(country),
  street              = VALUES(street),
  city                = VALUES(city),
  province            = VALUES(province),
  post_code           = VALUES(post_code),
  active              = VALUES(active)
`

const insertUserSQL = `INSERT INTO users (name, email, password) VALUES (?, ?, ?)`

const upsertUserSQL = `
INSERT INTO users (id, name, email, password)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name     = VALUES(name),
  email    = VALUES(email),
  password = VALUES(password)
`

const upsertReservationSQL = `
INSERT INTO reservations (id, start_date, end_date, property_id, guest_id)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  start_date  = VALUES(start_date),
  end_date    = VALUES(end_date),
  property_id = VALUES(property_id),
  guest_id    = VALUES(guest_id)
`

const upsertReviewSQL = `
INSERT INTO property_reviews (id, guest_id, property_id, reservation_id, rating, message)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  guest_id       = VALUES(guest_id),
  property_id    = VALUES(property_id),
  reservation_id = VALUES(reservation_id),
  rating         = VALUES(rating),
  message        = VALUES(message)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getPropertySQL = `
SELECT ` + query.PropertyColumns + `
FROM properties p
WHERE p.id = ?
`

// Owner listing keeps zero-review properties (null rating), newest first.
const propertiesByOwnerSQL = `
SELECT
  ` + query.PropertyColumns + `,
  AVG(pr.rating) AS average_rating
FROM properties p
LEFT JOIN property_reviews pr ON pr.property_id = p.id
WHERE p.owner_id = ?
GROUP BY p.id
ORDER BY p.id DESC
LIMIT ?
`

const reservationsSQL = `
SELECT
  r.id, r.start_date, r.end_date, r.property_id, r.guest_id,
  ` + query.PropertyColumns + `,
  AVG(pr.rating) AS average_rating
FROM reservations r
JOIN properties p ON p.id = r.property_id
LEFT JOIN property_reviews pr ON pr.property_id = p.id
WHERE r.guest_id = ?
GROUP BY r.id, p.id
ORDER BY r.start_date, r.id
LIMIT ?
`

const getUserByEmailSQL = `SELECT id, name, email, password FROM users WHERE email = ?`

const getUserByIDSQL = `SELECT id, name, email, password FROM users WHERE id = ?`
